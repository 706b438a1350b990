package lsm_tree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSSTableAt(t *testing.T, dir string, gen uint64, entries []domainEntryFixture) {
	t.Helper()
	path := filepath.Join(dir, sstableFileName(gen))
	buildTestSSTable(t, path, entries)
}

func TestStorageManagerOpenOrdersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writeSSTableAt(t, dir, 0, []domainEntryFixture{{key: []byte("a"), value: []byte("old")}})
	writeSSTableAt(t, dir, 1, []domainEntryFixture{{key: []byte("a"), value: []byte("new")}})

	sm, err := OpenStorageManager(dir)
	require.NoError(t, err)
	defer sm.Close()

	value, tombstone, found, err := sm.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, tombstone)
	assert.Equal(t, []byte("new"), value)

	assert.Equal(t, uint64(2), sm.NextGenerationID())
}

func TestStorageManagerTombstoneTerminatesSearch(t *testing.T) {
	dir := t.TempDir()
	writeSSTableAt(t, dir, 0, []domainEntryFixture{{key: []byte("a"), value: []byte("old")}})
	writeSSTableAt(t, dir, 1, []domainEntryFixture{{key: []byte("a"), tombstone: true}})

	sm, err := OpenStorageManager(dir)
	require.NoError(t, err)
	defer sm.Close()

	_, tombstone, found, err := sm.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, tombstone)
}

func TestStorageManagerAddNewestIsVisibleImmediately(t *testing.T) {
	dir := t.TempDir()
	sm, err := OpenStorageManager(dir)
	require.NoError(t, err)
	defer sm.Close()

	gen := sm.NextGenerationID()
	path := sm.Path(gen)
	buildTestSSTable(t, path, []domainEntryFixture{{key: []byte("k"), value: []byte("v")}})

	reader, err := OpenSSTableReader(path)
	require.NoError(t, err)
	sm.AddNewest(reader, gen)

	assert.Equal(t, 1, sm.Count())
	value, _, found, err := sm.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), value)
}

func TestParseGenerationRejectsUnrelatedFiles(t *testing.T) {
	_, ok := parseGeneration("not-an-sstable.txt")
	assert.False(t, ok)

	gen, ok := parseGeneration("sstable_42.dat")
	require.True(t, ok)
	assert.Equal(t, uint64(42), gen)
}
