package lsm_tree

import (
	"atlaskv/internal/domain"
	"sync"
)

// memtableSkipListLevels and memtableSkipListP tune the probabilistic
// skip list backing the MemTable. p must be in (0,1); it is the
// per-level promotion probability, so a value near 0.5 gives the usual
// logarithmic height without over-promoting every node to every level.
const (
	memtableSkipListLevels = 16
	memtableSkipListP      = 0.5
)

// MemTable is the ordered, size-tracked, in-memory buffer of recent
// writes. It is read by any number of goroutines concurrently; it is
// written by exactly one goroutine at a time, enforced by the Engine's
// write mutex, not by MemTable itself. MemTable's own RWMutex only
// protects the skip list's internal pointers from a concurrent reader
// observing a half-linked node.
type MemTable struct {
	mu   sync.RWMutex
	list *skipList
}

// NewMemTable creates an empty MemTable.
func NewMemTable() *MemTable {
	return &MemTable{list: newSkipList(memtableSkipListLevels, memtableSkipListP)}
}

// Put inserts or overwrites key with value.
func (mt *MemTable) Put(key, value []byte) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.list.Set(domain.NewPut(key, value))
}

// Delete writes a tombstone for key.
func (mt *MemTable) Delete(key []byte) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.list.Set(domain.NewTombstone(key))
}

// Get returns the entry for key, if present. The entry's Tombstone
// field distinguishes a deletion marker from a live value; absence is
// reported via the bool return, never by a nil/empty value.
func (mt *MemTable) Get(key []byte) (domain.Entry, bool) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.list.Get(key)
}

// IterSorted returns every entry, tombstones included, in ascending key
// order. Used only
// by the flush path, which holds the Engine's write mutex and is
// therefore the only writer that could otherwise race with this walk.
func (mt *MemTable) IterSorted() []domain.Entry {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.list.All()
}

// ApproxSize returns the approximate byte footprint of all entries,
// tombstones included: the sum of each entry's Size() (a tombstone
// counts its key only), kept incrementally up to date by Set
// rather than recomputed by walking the list.
func (mt *MemTable) ApproxSize() int {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.list.Size()
}

// Clear empties the MemTable after a successful flush.
func (mt *MemTable) Clear() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.list = newSkipList(memtableSkipListLevels, memtableSkipListP)
}
