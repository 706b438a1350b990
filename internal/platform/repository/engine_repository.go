// Package repository adapts the lsm_tree engine core onto the narrow
// interface the application services need: a single struct wrapping
// the storage layer so services never import lsm_tree directly.
package repository

import (
	"atlaskv/internal/platform/repository/lsm_tree"
)

// EngineRepository wraps a *lsm_tree.Engine and is the sole point of
// contact between the application service layer and the storage
// engine core.
type EngineRepository struct {
	engine *lsm_tree.Engine
}

// NewEngineRepository wraps an already-opened engine. Opening the
// engine itself is bootstrap's job, since it requires EngineConfig and
// can fail in ways that should abort startup.
func NewEngineRepository(engine *lsm_tree.Engine) *EngineRepository {
	return &EngineRepository{engine: engine}
}

// Put stores key=value, logging to the WAL (synced per the configured
// sync strategy) before returning.
func (r *EngineRepository) Put(key, value []byte) error {
	return r.engine.Put(key, value)
}

// Delete writes a tombstone for key.
func (r *EngineRepository) Delete(key []byte) error {
	return r.engine.Delete(key)
}

// Get resolves key. found is false both when the key was never
// written and when its most recent write was a delete.
func (r *EngineRepository) Get(key []byte) (value []byte, found bool, err error) {
	return r.engine.Get(key)
}

// Flush forces the current MemTable to an SSTable regardless of size.
func (r *EngineRepository) Flush() error {
	return r.engine.Flush()
}

// Stats is a point-in-time snapshot of engine internals, surfaced by
// the admin HTTP handler's /stats endpoint.
type Stats struct {
	DataDir       string
	MemTableBytes int
	SSTableCount  int
}

// Stats reports the engine's current internal counters.
func (r *EngineRepository) Stats() Stats {
	return Stats{
		DataDir:       r.engine.DataDir(),
		MemTableBytes: r.engine.MemTableSize(),
		SSTableCount:  r.engine.SSTableCount(),
	}
}

// Close releases the underlying engine's file handles.
func (r *EngineRepository) Close() error {
	return r.engine.Close()
}
