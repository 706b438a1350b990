package lsm_tree

import (
	"atlaskv/internal/domain"
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
)

// headerSize is the fixed LSN(8)+CRC32(4)+Len(4) framing prefix of every
// WAL record.
const headerSize = 16

// maxPayloadSize bounds a single WAL record's payload: the largest
// possible value plus the largest possible key plus the tag/length
// overhead of the payload encoding (1 byte op tag + up to two 4-byte
// length fields).
const maxPayloadSize = domain.MaxValueSize + domain.MaxKeySize + 9

// WAL is the append-only, checksummed log every write is durably
// recorded to before it is visible anywhere else. It owns exactly one
// open file for the current generation and is meant to be driven by a
// single writer (the Engine, under its write mutex).
type WAL struct {
	mu          sync.Mutex
	f           *os.File
	w           *bufio.Writer
	path        string
	strategy    SyncStrategy
	uncommitted int
	poisoned    bool
}

// OpenWAL opens (creating if absent) the WAL file at path for appending.
// It never truncates an existing file; callers that want a fresh log
// should remove the file first or rely on Rotate.
func OpenWAL(path string, strategy SyncStrategy) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, domain.WrapIO("wal open", err)
	}
	return &WAL{
		f:        f,
		w:        bufio.NewWriter(f),
		path:     path,
		strategy: strategy,
	}, nil
}

// Append serializes entry into the fixed LSN/CRC32/Len frame plus
// payload, and hands it to the OS via the buffered writer, syncing per
// the configured strategy. On any I/O error the WAL is poisoned and
// further appends fail with domain.ErrPoisoned until the process
// restarts.
func (w *WAL) Append(entry domain.WALEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.poisoned {
		return domain.ErrPoisoned
	}

	payload := encodePayload(entry)

	var lsnBuf [8]byte
	binary.LittleEndian.PutUint64(lsnBuf[:], uint64(entry.LSN))

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	crcInput := make([]byte, 0, 12+len(payload))
	crcInput = append(crcInput, lsnBuf[:]...)
	crcInput = append(crcInput, lenBuf[:]...)
	crcInput = append(crcInput, payload...)
	crc := crc32.ChecksumIEEE(crcInput)

	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)

	frame := make([]byte, 0, headerSize+len(payload))
	frame = append(frame, lsnBuf[:]...)
	frame = append(frame, crcBuf[:]...)
	frame = append(frame, lenBuf[:]...)
	frame = append(frame, payload...)

	if _, err := w.w.Write(frame); err != nil {
		w.poisoned = true
		return domain.WrapIO("wal append", err)
	}
	w.uncommitted++

	if w.strategy.shouldSync(w.uncommitted) {
		if err := w.syncLocked(); err != nil {
			return err
		}
	}
	return nil
}

// Sync flushes the buffered writer and fsyncs the underlying file.
func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncLocked()
}

func (w *WAL) syncLocked() error {
	if w.poisoned {
		return domain.ErrPoisoned
	}
	if err := w.w.Flush(); err != nil {
		w.poisoned = true
		return domain.WrapIO("wal sync flush", err)
	}
	if err := w.f.Sync(); err != nil {
		w.poisoned = true
		return domain.WrapIO("wal sync fsync", err)
	}
	w.uncommitted = 0
	return nil
}

// Rotate truncates the WAL back to empty, atomically from the reader's
// point of view: all unsynced data is flushed first, then the current
// file is replaced by an empty file at the same path via a temp-file
// rename, and a fresh append handle is opened.
func (w *WAL) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.syncLocked(); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, "wal-rotate-*.tmp")
	if err != nil {
		w.poisoned = true
		return domain.WrapIO("wal rotate create temp", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		w.poisoned = true
		return domain.WrapIO("wal rotate sync temp", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		w.poisoned = true
		return domain.WrapIO("wal rotate close temp", err)
	}

	if err := w.f.Close(); err != nil {
		os.Remove(tmpPath)
		w.poisoned = true
		return domain.WrapIO("wal rotate close current", err)
	}

	if err := os.Rename(tmpPath, w.path); err != nil {
		w.poisoned = true
		return domain.WrapIO("wal rotate rename", err)
	}
	if err := fsyncDir(dir); err != nil {
		w.poisoned = true
		return domain.WrapIO("wal rotate fsync dir", err)
	}

	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		w.poisoned = true
		return domain.WrapIO("wal rotate reopen", err)
	}
	w.f = f
	w.w = bufio.NewWriter(f)
	w.uncommitted = 0
	return nil
}

// Close flushes and closes the underlying file without forcing a sync
// beyond what Sync already guarantees; callers that need durability on
// shutdown should call Sync first.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.w.Flush(); err != nil {
		return domain.WrapIO("wal close flush", err)
	}
	return w.f.Close()
}

func fsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// encodePayload serializes the operation portion of a WAL record:
// tag:u8, key_len:u32, key, and for Put only val_len:u32, value.
func encodePayload(entry domain.WALEntry) []byte {
	buf := make([]byte, 0, 9+len(entry.Key)+len(entry.Value))
	tag := byte(domain.OpPut)
	if entry.Op == domain.OpDelete {
		tag = byte(domain.OpDelete)
	}
	buf = append(buf, tag)

	var klen [4]byte
	binary.LittleEndian.PutUint32(klen[:], uint32(len(entry.Key)))
	buf = append(buf, klen[:]...)
	buf = append(buf, entry.Key...)

	if entry.Op == domain.OpPut {
		var vlen [4]byte
		binary.LittleEndian.PutUint32(vlen[:], uint32(len(entry.Value)))
		buf = append(buf, vlen[:]...)
		buf = append(buf, entry.Value...)
	}
	return buf
}

func decodePayload(payload []byte) (domain.Op, []byte, []byte, error) {
	if len(payload) < 5 {
		return 0, nil, nil, fmt.Errorf("payload too short")
	}
	tag := payload[0]
	keyLen := binary.LittleEndian.Uint32(payload[1:5])
	off := 5
	if off+int(keyLen) > len(payload) {
		return 0, nil, nil, fmt.Errorf("key overruns payload")
	}
	key := payload[off : off+int(keyLen)]
	off += int(keyLen)

	switch tag {
	case byte(domain.OpDelete):
		return domain.OpDelete, key, nil, nil
	case byte(domain.OpPut):
		if off+4 > len(payload) {
			return 0, nil, nil, fmt.Errorf("missing value length")
		}
		valLen := binary.LittleEndian.Uint32(payload[off : off+4])
		off += 4
		if off+int(valLen) > len(payload) {
			return 0, nil, nil, fmt.Errorf("value overruns payload")
		}
		value := payload[off : off+int(valLen)]
		return domain.OpPut, key, value, nil
	default:
		return 0, nil, nil, fmt.Errorf("unknown op tag %d", tag)
	}
}
