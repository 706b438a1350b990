package lsm_tree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlaskv/internal/domain"
)

func TestWALAppendAndRecover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := OpenWAL(path, EveryWriteStrategy())
	require.NoError(t, err)

	require.NoError(t, w.Append(domain.WALEntry{LSN: 0, Op: domain.OpPut, Key: []byte("a"), Value: []byte("1")}))
	require.NoError(t, w.Append(domain.WALEntry{LSN: 1, Op: domain.OpPut, Key: []byte("b"), Value: []byte("2")}))
	require.NoError(t, w.Append(domain.WALEntry{LSN: 2, Op: domain.OpDelete, Key: []byte("a")}))
	require.NoError(t, w.Close())

	entries, err := RecoverWAL(path)
	require.NoError(t, err)
	require.Len(t, entries, 3, "unexpected recovery: %s", spew.Sdump(entries))

	assert.Equal(t, domain.OpPut, entries[0].Op)
	assert.Equal(t, []byte("a"), entries[0].Key)
	assert.Equal(t, []byte("1"), entries[0].Value)
	assert.Equal(t, domain.OpDelete, entries[2].Op)
	assert.Equal(t, []byte("a"), entries[2].Key)
}

func TestWALRecoverMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	entries, err := RecoverWAL(filepath.Join(dir, "absent.log"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWALRecoverTruncatesTrailingCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := OpenWAL(path, EveryWriteStrategy())
	require.NoError(t, err)
	require.NoError(t, w.Append(domain.WALEntry{LSN: 0, Op: domain.OpPut, Key: []byte("k"), Value: []byte("v")}))
	require.NoError(t, w.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	validSize := info.Size()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := RecoverWAL(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, validSize, info.Size(), "trailing garbage should have been truncated")
}

func TestWALAppendAfterPoisonFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := OpenWAL(path, EveryWriteStrategy())
	require.NoError(t, err)

	require.NoError(t, w.Close())
	err = w.Append(domain.WALEntry{LSN: 0, Op: domain.OpPut, Key: []byte("x"), Value: []byte("y")})
	assert.Error(t, err)

	err = w.Append(domain.WALEntry{LSN: 1, Op: domain.OpPut, Key: []byte("x"), Value: []byte("z")})
	assert.ErrorIs(t, err, domain.ErrPoisoned)
}

func TestWALRotateTruncatesAndPreservesAppendability(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := OpenWAL(path, EveryWriteStrategy())
	require.NoError(t, err)
	require.NoError(t, w.Append(domain.WALEntry{LSN: 0, Op: domain.OpPut, Key: []byte("a"), Value: []byte("1")}))
	require.NoError(t, w.Rotate())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	require.NoError(t, w.Append(domain.WALEntry{LSN: 1, Op: domain.OpPut, Key: []byte("b"), Value: []byte("2")}))
	require.NoError(t, w.Close())

	entries, err := RecoverWAL(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []byte("b"), entries[0].Key)
}

func TestSyncStrategyEveryNEntries(t *testing.T) {
	s := EveryNEntriesStrategy(3)
	assert.False(t, s.shouldSync(1))
	assert.False(t, s.shouldSync(2))
	assert.True(t, s.shouldSync(3))
}

func TestSyncStrategyEveryNEntriesClampsToOne(t *testing.T) {
	s := EveryNEntriesStrategy(0)
	assert.True(t, s.shouldSync(1))
}
