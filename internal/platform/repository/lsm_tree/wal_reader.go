package lsm_tree

import (
	"atlaskv/internal/domain"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"

	"atlaskv/internal/platform/obs"
)

// walReader performs a sequential scan of a WAL file: it reads frames
// until it hits EOF, a short read, a CRC mismatch, or an implausible
// length, and remembers the byte offset of the last frame that
// validated cleanly.
type walReader struct {
	f            *os.File
	pos          int64
	size         int64
	lastValidEnd int64
}

func openWALReader(path string) (*walReader, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, domain.WrapIO("wal reader open", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, domain.WrapIO("wal reader stat", err)
	}
	return &walReader{f: f, size: info.Size()}, true, nil
}

// next returns the next valid entry, or ok=false once the scan should
// stop (clean EOF, a partial trailing frame, a bad checksum, or an
// implausible length). Stopping is never reported as an error; tail
// corruption is handled by truncation, not surfaced to the caller.
func (r *walReader) next() (domain.WALEntry, bool, error) {
	if r.pos+headerSize > r.size {
		return domain.WALEntry{}, false, nil
	}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r.f, header); err != nil {
		return domain.WALEntry{}, false, nil
	}

	lsn := binary.LittleEndian.Uint64(header[0:8])
	crc := binary.LittleEndian.Uint32(header[8:12])
	length := binary.LittleEndian.Uint32(header[12:16])

	if length > maxPayloadSize {
		return domain.WALEntry{}, false, nil
	}
	if r.pos+headerSize+int64(length) > r.size {
		return domain.WALEntry{}, false, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.f, payload); err != nil {
		return domain.WALEntry{}, false, nil
	}

	crcInput := make([]byte, 0, 12+len(payload))
	crcInput = append(crcInput, header[0:8]...)
	crcInput = append(crcInput, header[12:16]...)
	crcInput = append(crcInput, payload...)
	if crc32.ChecksumIEEE(crcInput) != crc {
		return domain.WALEntry{}, false, nil
	}

	op, key, value, err := decodePayload(payload)
	if err != nil {
		return domain.WALEntry{}, false, nil
	}

	r.pos += headerSize + int64(length)
	r.lastValidEnd = r.pos

	entry := domain.WALEntry{LSN: domain.LSN(lsn), Op: op, Key: append([]byte(nil), key...)}
	if op == domain.OpPut {
		entry.Value = append([]byte(nil), value...)
	}
	return entry, true, nil
}

func (r *walReader) close() error {
	return r.f.Close()
}

// RecoverWAL replays path: it returns every entry that validated
// cleanly, in on-disk order, and truncates the file to the byte offset
// of the last valid entry so that any trailing partial or corrupt bytes
// are discarded.
func RecoverWAL(path string) ([]domain.WALEntry, error) {
	reader, exists, err := openWALReader(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var entries []domain.WALEntry
	for {
		entry, ok, err := reader.next()
		if err != nil {
			reader.close()
			return nil, err
		}
		if !ok {
			break
		}
		entries = append(entries, entry)
	}

	lastValidEnd := reader.lastValidEnd
	fileSize := reader.size
	if err := reader.close(); err != nil {
		return nil, domain.WrapIO("wal recover close", err)
	}

	if lastValidEnd < fileSize {
		obs.Warn.Printf("wal recovery: truncating %s from %d to %d bytes (tail corruption or partial write)", path, fileSize, lastValidEnd)
		f, err := os.OpenFile(path, os.O_WRONLY, 0644)
		if err != nil {
			return nil, domain.WrapIO("wal recover truncate open", err)
		}
		defer f.Close()
		if err := f.Truncate(lastValidEnd); err != nil {
			return nil, domain.WrapIO("wal recover truncate", err)
		}
	}

	return entries, nil
}
