package lsm_tree

import (
	"atlaskv/internal/domain"
	"atlaskv/internal/platform/obs"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

const walFileName = "wal.log"

// EngineConfig holds the engine's tunable options.
type EngineConfig struct {
	DataDir           string
	WalSyncStrategy   SyncStrategy
	MemtableSizeLimit int
	MaxKeySize        int
	MaxValueSize      int
}

// DefaultEngineConfig returns the engine's built-in defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DataDir:           "./atlaskv_data",
		WalSyncStrategy:   EveryNEntriesStrategy(100),
		MemtableSizeLimit: 64 * 1024 * 1024,
		MaxKeySize:        domain.MaxKeySize,
		MaxValueSize:      domain.MaxValueSize,
	}
}

// Engine is the coordinator: it owns the WAL, the MemTable, the
// StorageManager, write serialization, and LSN issuance, and drives
// startup recovery.
//
// Concurrency model: single-writer/multi-reader. writeMu serializes
// Put/Delete/Flush; Get never takes writeMu, relying on MemTable's own
// RWMutex and StorageManager's own RWMutex for its consistency.
type Engine struct {
	cfg EngineConfig

	writeMu sync.Mutex
	nextLSN atomic.Uint64

	wal     *WAL
	mem     *MemTable
	storage *StorageManager

	walPath string
}

// Open creates data_dir if absent, opens the Storage Manager, recovers
// the WAL into the MemTable, and opens a fresh WAL writer.
func Open(cfg EngineConfig) (*Engine, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, domain.WrapIO("engine open mkdir", err)
	}

	storage, err := OpenStorageManager(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	walPath := filepath.Join(cfg.DataDir, walFileName)
	recovered, err := RecoverWAL(walPath)
	if err != nil {
		return nil, err
	}

	mem := NewMemTable()
	var maxLSN domain.LSN
	for _, entry := range recovered {
		applyToMemTable(mem, entry)
		if entry.LSN > maxLSN {
			maxLSN = entry.LSN
		}
	}
	if len(recovered) > 0 {
		obs.Info.Printf("engine recovery: replayed %d wal entries up to lsn %d", len(recovered), maxLSN)
	}

	wal, err := OpenWAL(walPath, cfg.WalSyncStrategy)
	if err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, wal: wal, mem: mem, storage: storage, walPath: walPath}
	start := uint64(maxLSN) + 1
	if start < 1 {
		start = 1
	}
	e.nextLSN.Store(start)
	return e, nil
}

func applyToMemTable(mem *MemTable, entry domain.WALEntry) {
	if entry.Op == domain.OpDelete {
		mem.Delete(entry.Key)
		return
	}
	mem.Put(entry.Key, entry.Value)
}

func (e *Engine) allocateLSN() domain.LSN {
	return domain.LSN(e.nextLSN.Add(1) - 1)
}

// Put writes key=value. It is durably logged to the WAL (per the
// configured sync strategy) before the client-visible acknowledgment.
func (e *Engine) Put(key, value []byte) error {
	if err := e.validate(key, value, false); err != nil {
		return err
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	lsn := e.allocateLSN()
	if err := e.wal.Append(domain.WALEntry{LSN: lsn, Op: domain.OpPut, Key: key, Value: value}); err != nil {
		return err
	}

	e.mem.Put(key, value)
	if e.mem.ApproxSize() >= e.cfg.MemtableSizeLimit {
		if err := e.flushLocked(); err != nil {
			return err
		}
	}
	return nil
}

// Delete writes a tombstone for key, following the same durability
// ordering as Put.
func (e *Engine) Delete(key []byte) error {
	if err := e.validate(key, nil, true); err != nil {
		return err
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	lsn := e.allocateLSN()
	if err := e.wal.Append(domain.WALEntry{LSN: lsn, Op: domain.OpDelete, Key: key}); err != nil {
		return err
	}

	e.mem.Delete(key)
	if e.mem.ApproxSize() >= e.cfg.MemtableSizeLimit {
		if err := e.flushLocked(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) validate(key, value []byte, isDelete bool) error {
	if len(key) == 0 {
		return domain.InvalidArgument("key must be non-empty")
	}
	if len(key) > e.cfg.MaxKeySize {
		return domain.InvalidArgument(fmt.Sprintf("key of %d bytes exceeds max_key_size %d", len(key), e.cfg.MaxKeySize))
	}
	if !isDelete && len(value) > e.cfg.MaxValueSize {
		return domain.InvalidArgument(fmt.Sprintf("value of %d bytes exceeds max_value_size %d", len(value), e.cfg.MaxValueSize))
	}
	return nil
}

// Get resolves key by checking the MemTable first, then the Storage
// Manager newest-to-oldest. It never takes writeMu.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	if entry, ok := e.mem.Get(key); ok {
		if entry.Tombstone {
			return nil, false, nil
		}
		return entry.Value, true, nil
	}

	value, tombstone, found, err := e.storage.Get(key)
	if err != nil {
		return nil, false, err
	}
	if !found || tombstone {
		return nil, false, nil
	}
	return value, true, nil
}

// Flush forces a flush of the current MemTable regardless of its size.
// Caller does not need to hold any lock; Flush acquires writeMu itself.
func (e *Engine) Flush() error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.flushLocked()
}

// flushLocked writes the current MemTable out as a new SSTable, adds it
// to the Storage Manager, and rotates the WAL. Caller must hold
// writeMu.
func (e *Engine) flushLocked() error {
	snapshot := e.mem.IterSorted()
	if len(snapshot) == 0 {
		return nil
	}

	gen := e.storage.NextGenerationID()
	path := e.storage.Path(gen)

	builder, err := NewSSTableBuilder(path, uint64(len(snapshot)))
	if err != nil {
		return err
	}
	for _, entry := range snapshot {
		if entry.Tombstone {
			err = builder.AddTombstone(entry.Key)
		} else {
			err = builder.Add(entry.Key, entry.Value)
		}
		if err != nil {
			builder.Abort()
			return err
		}
	}
	if err := builder.Finish(); err != nil {
		return err
	}

	reader, err := OpenSSTableReader(path)
	if err != nil {
		return err
	}
	e.storage.AddNewest(reader, gen)

	obs.Info.Printf("engine flush: wrote %d entries to %s", len(snapshot), path)

	// If rotation fails here, the new SSTable is already durable and
	// discoverable, so a subsequent recovery replaying WAL entries that
	// duplicate it is safe; keyed writes are set-semantic and idempotent.
	if err := e.wal.Rotate(); err != nil {
		return err
	}

	e.mem.Clear()
	return nil
}

// Close acquires writeMu, syncs the WAL, and closes underlying files.
// It deliberately does not force a flush of the MemTable; any
// unflushed entries are recovered from the WAL on the next Open.
func (e *Engine) Close() error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.wal.Sync(); err != nil {
		return err
	}
	if err := e.wal.Close(); err != nil {
		return err
	}
	return e.storage.Close()
}

// DataDir returns the configured data directory.
func (e *Engine) DataDir() string { return e.cfg.DataDir }

// MemTableSize returns the current approximate MemTable size in bytes.
func (e *Engine) MemTableSize() int { return e.mem.ApproxSize() }

// SSTableCount returns the number of SSTables currently tracked by the
// Storage Manager.
func (e *Engine) SSTableCount() int { return e.storage.Count() }
