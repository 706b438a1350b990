// Package config loads AtlasKV's runtime configuration: a handful of
// flag.* process flags layered over godotenv-loaded environment
// variables, falling back to the engine's built-in defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"atlaskv/internal/domain"
	"atlaskv/internal/platform/repository/lsm_tree"
)

var (
	dataDirFlag  = flag.String("data-dir", "", "directory for the WAL and SSTables")
	adminPort    = flag.Int("admin-port", 8080, "port for the admin HTTP surface")
	syncStrategy = flag.String("wal-sync", "", "wal sync strategy: every-write or every-n:<N>")
)

// Config is the process-wide configuration: the engine's tunables
// (data directory, WAL sync strategy, memtable size limit, key/value
// size ceilings) plus the admin server's listen port.
type Config struct {
	DataDir           string
	WalSyncStrategy   lsm_tree.SyncStrategy
	MemtableSizeLimit int
	MaxKeySize        int
	MaxValueSize      int
	AdminPort         int
}

// LoadConfig loads a .env file if present, then flags, then
// environment variables, falling back to the engine's defaults.
func LoadConfig() (Config, error) {
	_ = godotenv.Load(".env")

	def := lsm_tree.DefaultEngineConfig()

	cfg := Config{
		DataDir:           firstNonEmpty(*dataDirFlag, os.Getenv("ATLASKV_DATA_DIR"), def.DataDir),
		MemtableSizeLimit: def.MemtableSizeLimit,
		MaxKeySize:        def.MaxKeySize,
		MaxValueSize:      def.MaxValueSize,
		AdminPort:         *adminPort,
	}

	if v := os.Getenv("ATLASKV_MEMTABLE_SIZE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, domain.InvalidArgument("ATLASKV_MEMTABLE_SIZE_LIMIT must be an integer")
		}
		cfg.MemtableSizeLimit = n
	}
	if v := os.Getenv("ATLASKV_MAX_KEY_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, domain.InvalidArgument("ATLASKV_MAX_KEY_SIZE must be an integer")
		}
		if n > domain.MaxKeySize {
			return Config{}, domain.InvalidArgument(fmt.Sprintf("ATLASKV_MAX_KEY_SIZE must not exceed %d", domain.MaxKeySize))
		}
		cfg.MaxKeySize = n
	}
	if v := os.Getenv("ATLASKV_MAX_VALUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, domain.InvalidArgument("ATLASKV_MAX_VALUE_SIZE must be an integer")
		}
		if n > domain.MaxValueSize {
			return Config{}, domain.InvalidArgument(fmt.Sprintf("ATLASKV_MAX_VALUE_SIZE must not exceed %d", domain.MaxValueSize))
		}
		cfg.MaxValueSize = n
	}
	adminPortFlagSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "admin-port" {
			adminPortFlagSet = true
		}
	})
	if v := os.Getenv("ATLASKV_ADMIN_PORT"); v != "" && !adminPortFlagSet {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, domain.InvalidArgument("ATLASKV_ADMIN_PORT must be an integer")
		}
		cfg.AdminPort = n
	}

	strategy := firstNonEmpty(*syncStrategy, os.Getenv("ATLASKV_WAL_SYNC"))
	parsed, err := parseSyncStrategy(strategy)
	if err != nil {
		return Config{}, err
	}
	cfg.WalSyncStrategy = parsed

	return cfg, nil
}

func parseSyncStrategy(s string) (lsm_tree.SyncStrategy, error) {
	if s == "" {
		return lsm_tree.EveryNEntriesStrategy(100), nil
	}
	if s == "every-write" {
		return lsm_tree.EveryWriteStrategy(), nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "every-n:%d", &n); err != nil {
		return lsm_tree.SyncStrategy{}, domain.InvalidArgument("wal sync strategy must be 'every-write' or 'every-n:<N>'")
	}
	return lsm_tree.EveryNEntriesStrategy(n), nil
}

// EngineConfig projects Config down to the subset lsm_tree.Engine needs.
func (c Config) EngineConfig() lsm_tree.EngineConfig {
	return lsm_tree.EngineConfig{
		DataDir:           c.DataDir,
		WalSyncStrategy:   c.WalSyncStrategy,
		MemtableSizeLimit: c.MemtableSizeLimit,
		MaxKeySize:        c.MaxKeySize,
		MaxValueSize:      c.MaxValueSize,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
