package lsm_tree

import (
	"atlaskv/internal/domain"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"sort"
	"sync"
)

// SSTableReader opens an existing, immutable SSTable and keeps its
// index block resident in memory. Point lookups binary search the
// index, then seek the file; the reader's own mutex serializes seeks
// from concurrent callers while a Storage Manager holds a single
// read-lock across them all.
type SSTableReader struct {
	path string

	mu sync.Mutex
	f  *os.File

	count uint64
	index []indexEntry // sorted ascending by key
}

// OpenSSTableReader validates the header, footer, and data-block
// checksum of the file at path, and loads its index block into memory.
func OpenSSTableReader(path string) (*SSTableReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapIO("sstable reader open", err)
	}

	r, err := buildReader(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func buildReader(path string, f *os.File) (*SSTableReader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, domain.WrapIO("sstable reader stat", err)
	}
	size := info.Size()
	if size < int64(sstHeaderSize+sstFooterSize) {
		return nil, domain.WrapCorruption("sstable reader", "file too small for header and footer")
	}

	header := make([]byte, sstHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, domain.WrapIO("sstable reader read header", err)
	}
	if !bytes.Equal(header[0:4], sstMagic[:]) {
		return nil, domain.WrapCorruption("sstable reader", "bad magic")
	}
	version := binary.LittleEndian.Uint16(header[4:6])
	if version != sstVersion {
		return nil, domain.WrapCorruption("sstable reader", "unsupported version")
	}
	count := binary.LittleEndian.Uint64(header[6:14])

	footerOff := size - int64(sstFooterSize)
	if _, err := f.Seek(footerOff, io.SeekStart); err != nil {
		return nil, domain.WrapIO("sstable reader seek footer", err)
	}
	footer := make([]byte, sstFooterSize)
	if _, err := io.ReadFull(f, footer); err != nil {
		return nil, domain.WrapIO("sstable reader read footer", err)
	}
	indexOffset := binary.LittleEndian.Uint64(footer[0:8])
	wantCRC := binary.LittleEndian.Uint32(footer[8:12])

	if int64(indexOffset) < sstHeaderSize || int64(indexOffset) > footerOff {
		return nil, domain.WrapCorruption("sstable reader", "index offset out of range")
	}

	if err := verifyDataCRC(f, int64(indexOffset), wantCRC); err != nil {
		return nil, err
	}

	index, err := readIndex(f, int64(indexOffset), footerOff, count)
	if err != nil {
		return nil, err
	}

	return &SSTableReader{path: path, f: f, count: count, index: index}, nil
}

func verifyDataCRC(f *os.File, dataEnd int64, want uint32) error {
	if _, err := f.Seek(sstHeaderSize, io.SeekStart); err != nil {
		return domain.WrapIO("sstable reader seek data", err)
	}
	h := crc32.NewIEEE()
	if _, err := io.CopyN(h, f, dataEnd-sstHeaderSize); err != nil {
		return domain.WrapIO("sstable reader read data for crc", err)
	}
	if h.Sum32() != want {
		return domain.WrapCorruption("sstable reader", "data block checksum mismatch")
	}
	return nil
}

func readIndex(f *os.File, start, end int64, count uint64) ([]indexEntry, error) {
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, domain.WrapIO("sstable reader seek index", err)
	}
	buf := make([]byte, end-start)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, domain.WrapIO("sstable reader read index", err)
	}

	index := make([]indexEntry, 0, count)
	off := 0
	for off < len(buf) {
		if off+12 > len(buf) {
			return nil, domain.WrapCorruption("sstable reader", "truncated index entry")
		}
		keyLen := binary.LittleEndian.Uint32(buf[off : off+4])
		offset := binary.LittleEndian.Uint64(buf[off+4 : off+12])
		off += 12
		if off+int(keyLen) > len(buf) {
			return nil, domain.WrapCorruption("sstable reader", "truncated index key")
		}
		key := append([]byte(nil), buf[off:off+int(keyLen)]...)
		off += int(keyLen)
		index = append(index, indexEntry{key: key, offset: offset})
	}

	if uint64(len(index)) != count {
		return nil, domain.WrapCorruption("sstable reader", "index entry count does not match header count")
	}
	return index, nil
}

// MinKey returns the smallest key in the table, or nil if empty.
func (r *SSTableReader) MinKey() []byte {
	if len(r.index) == 0 {
		return nil
	}
	return r.index[0].key
}

// MaxKey returns the largest key in the table, or nil if empty.
func (r *SSTableReader) MaxKey() []byte {
	if len(r.index) == 0 {
		return nil
	}
	return r.index[len(r.index)-1].key
}

// Count returns the number of entries in the table.
func (r *SSTableReader) Count() uint64 {
	return r.count
}

// Get looks up key. found is false if the key is absent from this
// table; tombstone is meaningful only when found is true.
func (r *SSTableReader) Get(key []byte) (value []byte, tombstone bool, found bool, err error) {
	if len(r.index) == 0 {
		return nil, false, false, nil
	}
	if bytes.Compare(key, r.MinKey()) < 0 || bytes.Compare(key, r.MaxKey()) > 0 {
		return nil, false, false, nil
	}

	i := sort.Search(len(r.index), func(i int) bool {
		return bytes.Compare(r.index[i].key, key) >= 0
	})
	if i >= len(r.index) || !bytes.Equal(r.index[i].key, key) {
		return nil, false, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.f.Seek(int64(r.index[i].offset), io.SeekStart); err != nil {
		return nil, false, false, domain.WrapIO("sstable reader seek entry", err)
	}
	lenBuf := make([]byte, 8)
	if _, err := io.ReadFull(r.f, lenBuf); err != nil {
		return nil, false, false, domain.WrapIO("sstable reader read entry lengths", err)
	}
	keyLen := binary.LittleEndian.Uint32(lenBuf[0:4])
	valLen := binary.LittleEndian.Uint32(lenBuf[4:8])

	if _, err := r.f.Seek(int64(keyLen), io.SeekCurrent); err != nil {
		return nil, false, false, domain.WrapIO("sstable reader skip key", err)
	}

	if valLen == tombstoneMarker {
		return nil, true, true, nil
	}

	value = make([]byte, valLen)
	if _, err := io.ReadFull(r.f, value); err != nil {
		return nil, false, false, domain.WrapIO("sstable reader read value", err)
	}
	return value, false, true, nil
}

// Close releases the underlying file handle.
func (r *SSTableReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}
