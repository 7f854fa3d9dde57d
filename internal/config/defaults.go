package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultScoreThreshold          = 0.2
	DefaultHighConfidenceThreshold = 0.5
	DefaultBufferSize              = 10
	DefaultLookaheadOffset         = 50
	DefaultCompoundMaxGap          = 4
	DefaultCloseDistanceKm         = 500.0
	DefaultMinDistanceKm           = 1.0
	DefaultPlaceEntityLabel        = "GPE"

	DefaultMaxNgramLength = 5

	DefaultGazetteerDriver   = "sqlite"
	DefaultLookupBatchSize   = 500
	DefaultQueryTimeout      = 10 * time.Second
	DefaultCacheTTL          = 24 * time.Hour
	DefaultSQLitePath        = "geonames.sqlite"
	DefaultSQLiteBusyTimeout = 5 * time.Second

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "geonames"
	DefaultDBSSLMode  = "disable"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisKeyPrefix = "epiann:"

	DefaultMetricsNamespace = "epiannotator"

	DefaultWorkerConcurrency = 4
	DefaultDocTimeout        = 60 * time.Second
)

// ApplyDefaults fills every zero-value field in cfg with its default. Values
// already set by the caller are left unchanged.
//
// Boolean toggles are not defaulted here; their zero value is the default.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Annotator ─────────────────────────────────────────────────────────────
	a := &cfg.Annotator
	if a.ScoreThreshold == 0 {
		a.ScoreThreshold = DefaultScoreThreshold
	}
	if a.HighConfidenceThreshold == 0 {
		a.HighConfidenceThreshold = DefaultHighConfidenceThreshold
	}
	if a.BufferSize == 0 {
		a.BufferSize = DefaultBufferSize
	}
	if a.LookaheadOffset == 0 {
		a.LookaheadOffset = DefaultLookaheadOffset
	}
	if a.CompoundMaxGap == 0 {
		a.CompoundMaxGap = DefaultCompoundMaxGap
	}
	if a.CloseDistanceKm == 0 {
		a.CloseDistanceKm = DefaultCloseDistanceKm
	}
	if a.MinDistanceKm == 0 {
		a.MinDistanceKm = DefaultMinDistanceKm
	}
	if a.PlaceEntityLabel == "" {
		a.PlaceEntityLabel = DefaultPlaceEntityLabel
	}

	// ── Tokenizer ─────────────────────────────────────────────────────────────
	if cfg.Tokenizer.MaxNgramLength == 0 {
		cfg.Tokenizer.MaxNgramLength = DefaultMaxNgramLength
	}

	// ── Gazetteer ─────────────────────────────────────────────────────────────
	if cfg.Gazetteer.Driver == "" {
		cfg.Gazetteer.Driver = DefaultGazetteerDriver
	}
	if cfg.Gazetteer.LookupBatchSize == 0 {
		cfg.Gazetteer.LookupBatchSize = DefaultLookupBatchSize
	}
	if cfg.Gazetteer.QueryTimeout == 0 {
		cfg.Gazetteer.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.Gazetteer.CacheTTL == 0 {
		cfg.Gazetteer.CacheTTL = DefaultCacheTTL
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultSQLitePath
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.DocTimeout == 0 {
		cfg.Worker.DocTimeout = DefaultDocTimeout
	}
}

// Default returns a Config populated entirely from defaults.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
