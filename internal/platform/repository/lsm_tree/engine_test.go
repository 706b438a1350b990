package lsm_tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngineConfig(dir string) EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.DataDir = dir
	cfg.WalSyncStrategy = EveryWriteStrategy()
	return cfg
}

func TestEnginePutGetDelete(t *testing.T) {
	e, err := Open(testEngineConfig(t.TempDir()))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put([]byte("a"), []byte("1")))
	value, found, err := e.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("1"), value)

	require.NoError(t, e.Delete([]byte("a")))
	_, found, err = e.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEngineRejectsOversizedKey(t *testing.T) {
	cfg := testEngineConfig(t.TempDir())
	cfg.MaxKeySize = 4
	e, err := Open(cfg)
	require.NoError(t, err)
	defer e.Close()

	err = e.Put([]byte("toolong"), []byte("v"))
	assert.Error(t, err)
}

func TestEngineRejectsEmptyKey(t *testing.T) {
	e, err := Open(testEngineConfig(t.TempDir()))
	require.NoError(t, err)
	defer e.Close()

	err = e.Put(nil, []byte("v"))
	assert.Error(t, err)
}

func TestEngineFlushMovesDataToSSTableAndClearsMemTable(t *testing.T) {
	e, err := Open(testEngineConfig(t.TempDir()))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put([]byte("a"), []byte("1")))
	require.NoError(t, e.Put([]byte("b"), []byte("2")))
	require.NoError(t, e.Flush())

	assert.Zero(t, e.MemTableSize())
	assert.Equal(t, 1, e.SSTableCount())

	value, found, err := e.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("1"), value)
}

func TestEngineSizeTriggeredFlush(t *testing.T) {
	cfg := testEngineConfig(t.TempDir())
	cfg.MemtableSizeLimit = 1
	e, err := Open(cfg)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put([]byte("a"), []byte("1")))
	assert.Equal(t, 1, e.SSTableCount())
	assert.Zero(t, e.MemTableSize())
}

func TestEngineRecoversFromWALAfterReopen(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(testEngineConfig(dir))
	require.NoError(t, err)
	require.NoError(t, e.Put([]byte("a"), []byte("1")))
	require.NoError(t, e.Put([]byte("b"), []byte("2")))
	require.NoError(t, e.Delete([]byte("a")))
	require.NoError(t, e.Close())

	reopened, err := Open(testEngineConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	_, found, err := reopened.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, found, "a was deleted before close, recovery should not resurrect it")

	value, found, err := reopened.Get([]byte("b"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("2"), value)
}

func TestEngineCloseDoesNotForceFlush(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(testEngineConfig(dir))
	require.NoError(t, err)
	require.NoError(t, e.Put([]byte("a"), []byte("1")))
	require.NoError(t, e.Close())

	reopened, err := Open(testEngineConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Zero(t, reopened.SSTableCount(), "Close must not force a flush; the write should still live only in the WAL")

	value, found, err := reopened.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("1"), value)
}
