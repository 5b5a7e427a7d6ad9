package config

import (
	"os"
	"strconv"

	"github.com/infinityseifer/eda-auto/internal/errors"
)

// Config represents the complete application configuration. It is
// built once at startup and passed down explicitly; nothing reads
// ambient state after Load returns.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
	Coercion  CoercionConfig
	Narrative NarrativeConfig
	Jobs      JobsConfig
	Upload    UploadConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StorageConfig holds file system paths for datasets, images and reports
type StorageConfig struct {
	Dir string
}

// DatabaseConfig holds the optional dataset registry connection.
// An empty URL disables the registry; the server falls back to
// filesystem discovery.
type DatabaseConfig struct {
	URL string
}

// ProfilingConfig holds the profiler guardrails
type ProfilingConfig struct {
	SampleCap          int
	MaxColumns         int
	CorrTopK           int
	MaxMissingRanked   int
	MaxHistograms      int
	MaxCategoricalBars int
	CategoryTopK       int
}

// CoercionConfig holds the temporal coercion threshold
type CoercionConfig struct {
	ParseThreshold float64
}

// NarrativeConfig holds narrative synthesis thresholds
type NarrativeConfig struct {
	WideColumnCutoff int
}

// JobsConfig bounds the asynchronous pipeline runner
type JobsConfig struct {
	MaxConcurrent int64
}

// UploadConfig bounds dataset uploads
type UploadConfig struct {
	MaxSizeMB int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Storage: StorageConfig{
			Dir: getEnvOrDefault("STORAGE_DIR", "storage"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Profiling: ProfilingConfig{
			SampleCap:          getEnvIntOrDefault("SAMPLE_CAP", 50000),
			MaxColumns:         getEnvIntOrDefault("MAX_COLUMNS", 100),
			CorrTopK:           getEnvIntOrDefault("CORR_TOP_K", 20),
			MaxMissingRanked:   getEnvIntOrDefault("MAX_MISSING_RANKED", 20),
			MaxHistograms:      getEnvIntOrDefault("MAX_HISTOGRAMS", 4),
			MaxCategoricalBars: getEnvIntOrDefault("MAX_CATEGORICAL_BARS", 4),
			CategoryTopK:       getEnvIntOrDefault("CATEGORY_TOP_K", 10),
		},
		Coercion: CoercionConfig{
			ParseThreshold: getEnvFloatOrDefault("TEMPORAL_PARSE_THRESHOLD", 0.9),
		},
		Narrative: NarrativeConfig{
			WideColumnCutoff: getEnvIntOrDefault("WIDE_COLUMN_CUTOFF", 60),
		},
		Jobs: JobsConfig{
			MaxConcurrent: int64(getEnvIntOrDefault("MAX_CONCURRENT_JOBS", 2)),
		},
		Upload: UploadConfig{
			MaxSizeMB: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Storage.Dir == "" {
		return errors.ConfigInvalid("STORAGE_DIR cannot be empty")
	}
	if cfg.Profiling.SampleCap <= 0 {
		return errors.ConfigInvalid("SAMPLE_CAP must be positive")
	}
	if cfg.Profiling.CorrTopK <= 0 {
		return errors.ConfigInvalid("CORR_TOP_K must be positive")
	}
	if cfg.Coercion.ParseThreshold <= 0 || cfg.Coercion.ParseThreshold >= 1 {
		return errors.ConfigInvalid("TEMPORAL_PARSE_THRESHOLD must be in (0, 1)")
	}
	if cfg.Jobs.MaxConcurrent <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_JOBS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
