package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ATLASKV_DATA_DIR", "")
	t.Setenv("ATLASKV_MEMTABLE_SIZE_LIMIT", "")
	t.Setenv("ATLASKV_MAX_KEY_SIZE", "")
	t.Setenv("ATLASKV_MAX_VALUE_SIZE", "")
	t.Setenv("ATLASKV_ADMIN_PORT", "")
	t.Setenv("ATLASKV_WAL_SYNC", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./atlaskv_data", cfg.DataDir)
	assert.Equal(t, 64*1024*1024, cfg.MemtableSizeLimit)
	assert.Equal(t, 8080, cfg.AdminPort)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ATLASKV_DATA_DIR", "/tmp/atlaskv-test")
	t.Setenv("ATLASKV_MEMTABLE_SIZE_LIMIT", "1024")
	t.Setenv("ATLASKV_MAX_KEY_SIZE", "128")
	t.Setenv("ATLASKV_MAX_VALUE_SIZE", "256")
	t.Setenv("ATLASKV_ADMIN_PORT", "9090")
	t.Setenv("ATLASKV_WAL_SYNC", "every-write")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/atlaskv-test", cfg.DataDir)
	assert.Equal(t, 1024, cfg.MemtableSizeLimit)
	assert.Equal(t, 128, cfg.MaxKeySize)
	assert.Equal(t, 256, cfg.MaxValueSize)
	assert.Equal(t, 9090, cfg.AdminPort)
}

func TestLoadConfigRejectsBadInteger(t *testing.T) {
	t.Setenv("ATLASKV_MEMTABLE_SIZE_LIMIT", "not-a-number")
	defer t.Setenv("ATLASKV_MEMTABLE_SIZE_LIMIT", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestParseSyncStrategyRejectsGarbage(t *testing.T) {
	_, err := parseSyncStrategy("whatever-this-is")
	assert.Error(t, err)
}
