// Package config provides the immutable session-flag snapshot consumed by
// the scan planner. A PlanningConfig is constructed once per planning call
// and passed explicitly; the planner never reads mutable global state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OrcPushdownOptionKey is the reader option the ORC optimized reader
// consults for filter pushdown. The selector derives its value from the
// session's pushdown flag when it substitutes the optimized reader.
const OrcPushdownOptionKey = "oap.orc.filter.pushdown"

// DefaultMaxSplitBytes is the default packing threshold (128 MiB).
const DefaultMaxSplitBytes = 128 * 1024 * 1024

// PlanningConfig holds the session flags the planner consults. Values are
// read-only for the duration of a planning call.
type PlanningConfig struct {
	// ParquetOptimizedEnabled enables optimized-reader substitution for
	// the Parquet family.
	ParquetOptimizedEnabled bool `json:"parquet_optimized_enabled" yaml:"parquet_optimized_enabled"`

	// ParquetCacheEnabled enables the data cache path of the optimized
	// Parquet reader.
	ParquetCacheEnabled bool `json:"parquet_cache_enabled" yaml:"parquet_cache_enabled"`

	// OrcOptimizedEnabled enables optimized-reader substitution for the
	// ORC family.
	OrcOptimizedEnabled bool `json:"orc_optimized_enabled" yaml:"orc_optimized_enabled"`

	// VectorizedReadEnabled reports whether the session reads columnar
	// batches; the data cache requires it.
	VectorizedReadEnabled bool `json:"vectorized_read_enabled" yaml:"vectorized_read_enabled"`

	// WholeStageEnabled reports whether whole-stage execution is on; the
	// data cache requires it.
	WholeStageEnabled bool `json:"whole_stage_enabled" yaml:"whole_stage_enabled"`

	// FilterPushdownEnabled is the session's reader-level filter pushdown
	// setting, propagated to the ORC optimized reader.
	FilterPushdownEnabled bool `json:"filter_pushdown_enabled" yaml:"filter_pushdown_enabled"`

	// MaxSplitBytes is both the file split size and the task packing
	// threshold.
	MaxSplitBytes int64 `json:"max_split_bytes" yaml:"max_split_bytes"`
}

// DefaultPlanningConfig returns the defaults for local development.
func DefaultPlanningConfig() PlanningConfig {
	return PlanningConfig{
		ParquetOptimizedEnabled: true,
		ParquetCacheEnabled:     false,
		OrcOptimizedEnabled:     true,
		VectorizedReadEnabled:   true,
		WholeStageEnabled:       true,
		FilterPushdownEnabled:   true,
		MaxSplitBytes:           DefaultMaxSplitBytes,
	}
}

// Validate validates the configuration.
func (c PlanningConfig) Validate() error {
	if c.MaxSplitBytes <= 0 {
		return fmt.Errorf("max_split_bytes must be positive, got %d", c.MaxSplitBytes)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file, starting
// from the defaults.
func LoadFromFile(path string) (PlanningConfig, error) {
	cfg := DefaultPlanningConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse JSON: %w", err)
		}
	default:
		return cfg, fmt.Errorf("config: unsupported file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv overrides configuration from environment variables.
// Environment variables use the OAP_ prefix.
func LoadFromEnv(cfg *PlanningConfig) {
	if v := os.Getenv("OAP_PARQUET_OPTIMIZED_ENABLED"); v != "" {
		cfg.ParquetOptimizedEnabled = parseBool(v)
	}
	if v := os.Getenv("OAP_PARQUET_CACHE_ENABLED"); v != "" {
		cfg.ParquetCacheEnabled = parseBool(v)
	}
	if v := os.Getenv("OAP_ORC_OPTIMIZED_ENABLED"); v != "" {
		cfg.OrcOptimizedEnabled = parseBool(v)
	}
	if v := os.Getenv("OAP_VECTORIZED_READ_ENABLED"); v != "" {
		cfg.VectorizedReadEnabled = parseBool(v)
	}
	if v := os.Getenv("OAP_WHOLE_STAGE_ENABLED"); v != "" {
		cfg.WholeStageEnabled = parseBool(v)
	}
	if v := os.Getenv("OAP_FILTER_PUSHDOWN_ENABLED"); v != "" {
		cfg.FilterPushdownEnabled = parseBool(v)
	}
	if v := os.Getenv("OAP_MAX_SPLIT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxSplitBytes = n
		}
	}
}

// LoadDotEnv loads a .env file into the process environment before
// LoadFromEnv runs. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: failed to load %s: %w", path, err)
	}
	return nil
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}
