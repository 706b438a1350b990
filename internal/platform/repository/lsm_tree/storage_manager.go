package lsm_tree

import (
	"atlaskv/internal/domain"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// sstableFilePrefix and sstableFileSuffix delimit the generation id
// embedded in each table's filename: "sstable_{gen}.dat".
const (
	sstableFilePrefix = "sstable_"
	sstableFileSuffix = ".dat"
)

type generationReader struct {
	gen    uint64
	reader *SSTableReader
}

// StorageManager owns the set of on-disk SSTable readers for one data
// directory, newest generation first.
//
// Internally the readers are kept oldest-appended-first so that
// AddNewest is an O(1) append; Get simply walks the slice back to
// front, which is equivalent to "newest first" without paying for a
// front-insert on every flush.
type StorageManager struct {
	dir string

	mu      sync.RWMutex
	readers []generationReader

	nextGen atomic.Uint64
}

// OpenStorageManager scans dir for sstable_*.dat files, opens each one
// (concurrently, via an errgroup, since index loading and checksum
// verification are independent per file), and orders them so Get walks
// newest to oldest.
func OpenStorageManager(dir string) (*StorageManager, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.WrapIO("storage manager readdir", err)
	}

	var gens []uint64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		gen, ok := parseGeneration(e.Name())
		if !ok {
			continue
		}
		gens = append(gens, gen)
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })

	readers := make([]generationReader, len(gens))
	var group errgroup.Group
	for i, gen := range gens {
		i, gen := i, gen
		group.Go(func() error {
			path := filepath.Join(dir, sstableFileName(gen))
			r, err := OpenSSTableReader(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			readers[i] = generationReader{gen: gen, reader: r}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		for _, gr := range readers {
			if gr.reader != nil {
				gr.reader.Close()
			}
		}
		return nil, err
	}

	sm := &StorageManager{dir: dir, readers: readers}
	var maxGen uint64
	if len(gens) > 0 {
		maxGen = gens[len(gens)-1]
	}
	sm.nextGen.Store(maxGen + 1)
	return sm, nil
}

func sstableFileName(gen uint64) string {
	return fmt.Sprintf("%s%d%s", sstableFilePrefix, gen, sstableFileSuffix)
}

func parseGeneration(name string) (uint64, bool) {
	if !strings.HasPrefix(name, sstableFilePrefix) || !strings.HasSuffix(name, sstableFileSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, sstableFilePrefix), sstableFileSuffix)
	gen, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return gen, true
}

// Get searches readers newest-generation-first and returns the first
// hit: a tombstone found anywhere in the chain terminates the search as
// absent, exactly like a value terminates it as present.
func (s *StorageManager) Get(key []byte) (value []byte, tombstone bool, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.readers) - 1; i >= 0; i-- {
		value, tombstone, found, err = s.readers[i].reader.Get(key)
		if err != nil {
			return nil, false, false, err
		}
		if found {
			return value, tombstone, true, nil
		}
	}
	return nil, false, false, nil
}

// NextGenerationID hands out a strictly increasing generation id.
func (s *StorageManager) NextGenerationID() uint64 {
	return s.nextGen.Add(1) - 1
}

// Path returns the final file path an SSTable of the given generation
// should be built at.
func (s *StorageManager) Path(gen uint64) string {
	return filepath.Join(s.dir, sstableFileName(gen))
}

// AddNewest registers reader as the newest generation. It is O(1): the
// reader is appended to the tail of the internal slice, which Get walks
// from tail to head.
func (s *StorageManager) AddNewest(reader *SSTableReader, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readers = append(s.readers, generationReader{gen: gen, reader: reader})
}

// Count returns the number of SSTables currently managed.
func (s *StorageManager) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readers)
}

// Close closes every underlying reader.
func (s *StorageManager) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, gr := range s.readers {
		if err := gr.reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
