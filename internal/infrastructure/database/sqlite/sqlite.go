// Package sqlite opens the embedded SQLite gazetteer through the pure-Go
// modernc driver and creates its schema.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Schema is the gazetteer lookup schema.
const Schema = `
CREATE TABLE IF NOT EXISTS geonames (
	geonameid     TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	asciiname     TEXT NOT NULL DEFAULT '',
	latitude      REAL NOT NULL,
	longitude     REAL NOT NULL,
	feature_class TEXT NOT NULL DEFAULT '',
	feature_code  TEXT NOT NULL DEFAULT '',
	country_code  TEXT NOT NULL DEFAULT '',
	admin1_code   TEXT NOT NULL DEFAULT '',
	admin2_code   TEXT NOT NULL DEFAULT '',
	admin3_code   TEXT NOT NULL DEFAULT '',
	admin4_code   TEXT NOT NULL DEFAULT '',
	population    INTEGER NOT NULL DEFAULT 0,
	timezone      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS alternatenames (
	geonameid                TEXT NOT NULL,
	alternatename            TEXT NOT NULL,
	alternatename_lemmatized TEXT NOT NULL,
	PRIMARY KEY (geonameid, alternatename)
);

CREATE INDEX IF NOT EXISTS idx_alternatenames_lemmatized
	ON alternatenames (alternatename_lemmatized);

CREATE TABLE IF NOT EXISTS alternatename_counts (
	geonameid TEXT PRIMARY KEY,
	count     INTEGER NOT NULL
);
`

// Open opens the database at cfg.Path. A read-only database must already
// hold the schema; otherwise the schema is created when missing.
func Open(ctx context.Context, cfg config.SQLiteConfig, log logging.Logger) (*sql.DB, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	db, err := sql.Open(DriverName, buildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGazetteerDriver, "open sqlite database")
	}

	// every connection to :memory: gets its own database
	if cfg.Path == MemoryPath {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeGazetteerUnavailable, "ping sqlite database").WithDetail(cfg.Path)
	}

	if cfg.Path != MemoryPath && !cfg.ReadOnly {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, errors.ErrCodeGazetteerDriver, "enable WAL mode")
		}
	}

	if !cfg.ReadOnly {
		if err := EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	log.Info("SQLite gazetteer opened", logging.String("path", cfg.Path), logging.Bool("read_only", cfg.ReadOnly))
	return db, nil
}

// EnsureSchema creates the gazetteer tables when they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return errors.Wrap(err, errors.ErrCodeMigrationFailed, "create sqlite schema")
	}
	return nil
}

// buildDSN adds the busy timeout and read-only mode as connection pragmas.
func buildDSN(cfg config.SQLiteConfig) string {
	if cfg.Path == MemoryPath {
		return MemoryPath
	}
	q := url.Values{}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	if cfg.ReadOnly {
		q.Add("mode", "ro")
	}
	return "file:" + cfg.Path + "?" + q.Encode()
}

//Personal.AI order the ending
