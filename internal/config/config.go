// Package config defines the configuration structures for EpiAnnotator.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // debug | info | warn | error
	Format      string   `mapstructure:"format"` // json | console
	OutputPaths []string `mapstructure:"output_paths"`
}

// AnnotatorConfig holds the geoname disambiguation constants.
type AnnotatorConfig struct {
	// ExtraBlocklist is appended to the built-in blocklist of spans that are
	// never queried against the gazetteer (months, compass words, agencies).
	ExtraBlocklist          []string `mapstructure:"extra_blocklist"`
	ScoreThreshold          float64  `mapstructure:"score_threshold"`
	HighConfidenceThreshold float64  `mapstructure:"high_confidence_threshold"`
	BufferSize              int      `mapstructure:"buffer_size"`
	LookaheadOffset         int      `mapstructure:"lookahead_offset"`
	CompoundMaxGap          int      `mapstructure:"compound_max_gap"`
	CloseDistanceKm         float64  `mapstructure:"close_distance_km"`
	MinDistanceKm           float64  `mapstructure:"min_distance_km"`
	PlaceEntityLabel        string   `mapstructure:"place_entity_label"`
	EnablePatientInfo       bool     `mapstructure:"enable_patient_info"`
}

// TokenizerConfig holds the stub linguistic pipeline settings.
type TokenizerConfig struct {
	MaxNgramLength int `mapstructure:"max_ngram_length"`
}

// GazetteerConfig selects and tunes the gazetteer backend.
type GazetteerConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite | postgres | memory
	LookupBatchSize int           `mapstructure:"lookup_batch_size"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	CacheEnabled    bool          `mapstructure:"cache_enabled"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

// SQLiteConfig holds parameters for the embedded SQLite gazetteer.
type SQLiteConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	ReadOnly    bool          `mapstructure:"read_only"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"db_name"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	MaxConns         int           `mapstructure:"max_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MigrateOnStart   bool          `mapstructure:"migrate_on_start"`
}

// RedisConfig holds Redis connection parameters for the lookup cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// ClassifierConfig points at the scorer coefficients.
type ClassifierConfig struct {
	// ModelPath is a YAML/JSON coefficient file; empty selects the built-in model.
	ModelPath string `mapstructure:"model_path"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Namespace    string `mapstructure:"namespace"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// WorkerConfig holds batch annotation tunables.
type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	DocTimeout  time.Duration `mapstructure:"doc_timeout"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Annotator  AnnotatorConfig  `mapstructure:"annotator"`
	Tokenizer  TokenizerConfig  `mapstructure:"tokenizer"`
	Gazetteer  GazetteerConfig  `mapstructure:"gazetteer"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	// Annotator
	a := c.Annotator
	if a.ScoreThreshold < 0 || a.ScoreThreshold >= 1 {
		return fmt.Errorf("config: annotator.score_threshold %v is out of range [0, 1)", a.ScoreThreshold)
	}
	if a.HighConfidenceThreshold < 0 || a.HighConfidenceThreshold >= 1 {
		return fmt.Errorf("config: annotator.high_confidence_threshold %v is out of range [0, 1)", a.HighConfidenceThreshold)
	}
	if a.BufferSize < 1 {
		return fmt.Errorf("config: annotator.buffer_size must be ≥ 1, got %d", a.BufferSize)
	}
	if a.LookaheadOffset < 0 {
		return fmt.Errorf("config: annotator.lookahead_offset must be ≥ 0, got %d", a.LookaheadOffset)
	}
	if a.CompoundMaxGap < 0 {
		return fmt.Errorf("config: annotator.compound_max_gap must be ≥ 0, got %d", a.CompoundMaxGap)
	}
	if a.CloseDistanceKm <= 0 || a.MinDistanceKm <= 0 {
		return fmt.Errorf("config: annotator distance radii must be positive")
	}

	// Tokenizer
	if c.Tokenizer.MaxNgramLength < 1 {
		return fmt.Errorf("config: tokenizer.max_ngram_length must be ≥ 1, got %d", c.Tokenizer.MaxNgramLength)
	}

	// Gazetteer
	switch c.Gazetteer.Driver {
	case "sqlite":
		if c.SQLite.Path == "" {
			return fmt.Errorf("config: sqlite.path is required for the sqlite gazetteer")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required for the postgres gazetteer")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
	case "memory":
	default:
		return fmt.Errorf("config: gazetteer.driver %q is invalid; expected sqlite|postgres|memory", c.Gazetteer.Driver)
	}
	if c.Gazetteer.LookupBatchSize < 1 {
		return fmt.Errorf("config: gazetteer.lookup_batch_size must be ≥ 1, got %d", c.Gazetteer.LookupBatchSize)
	}
	if c.Gazetteer.CacheEnabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when gazetteer.cache_enabled is set")
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
