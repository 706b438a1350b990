package lsm_tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemTablePutGet(t *testing.T) {
	mt := NewMemTable()
	mt.Put([]byte("a"), []byte("1"))

	entry, ok := mt.Get([]byte("a"))
	require.True(t, ok)
	assert.False(t, entry.Tombstone)
	assert.Equal(t, []byte("1"), entry.Value)
}

func TestMemTableDeleteShadowsPut(t *testing.T) {
	mt := NewMemTable()
	mt.Put([]byte("a"), []byte("1"))
	mt.Delete([]byte("a"))

	entry, ok := mt.Get([]byte("a"))
	require.True(t, ok)
	assert.True(t, entry.Tombstone)
}

func TestMemTableApproxSizeTracksOverwrites(t *testing.T) {
	mt := NewMemTable()
	mt.Put([]byte("key"), []byte("value"))
	assert.Equal(t, 8, mt.ApproxSize())

	mt.Put([]byte("key"), []byte("v"))
	assert.Equal(t, 4, mt.ApproxSize())

	mt.Delete([]byte("key"))
	assert.Equal(t, 3, mt.ApproxSize())
}

func TestMemTableIterSortedOrder(t *testing.T) {
	mt := NewMemTable()
	mt.Put([]byte("c"), []byte("3"))
	mt.Put([]byte("a"), []byte("1"))
	mt.Put([]byte("b"), []byte("2"))

	entries := mt.IterSorted()
	require.Len(t, entries, 3)
	assert.Equal(t, []byte("a"), entries[0].Key)
	assert.Equal(t, []byte("b"), entries[1].Key)
	assert.Equal(t, []byte("c"), entries[2].Key)
}

func TestMemTableClearResetsSize(t *testing.T) {
	mt := NewMemTable()
	mt.Put([]byte("a"), []byte("1"))
	mt.Clear()

	assert.Zero(t, mt.ApproxSize())
	_, ok := mt.Get([]byte("a"))
	assert.False(t, ok)
}

func TestMemTableGetMissingKey(t *testing.T) {
	mt := NewMemTable()
	_, ok := mt.Get([]byte("nope"))
	assert.False(t, ok)
}
