package postgres

import (
	"database/sql"
	"embed"
	stderrors "errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationSource returns the embedded gazetteer migrations.
func MigrationSource() (source.Driver, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to open embedded migrations")
	}
	return src, nil
}

// newMigrate binds the embedded migrations to db. The returned instance must
// not be closed: closing it closes db.
func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := MigrationSource()
	if err != nil {
		return nil, err
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to create migrate instance")
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// RunMigrations — apply all pending migrations
// ─────────────────────────────────────────────────────────────────────────────

// RunMigrations applies every pending migration. An up-to-date schema is not
// an error.
func RunMigrations(db *sql.DB, log logging.Logger) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		version, _, _ := m.Version()
		return errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to run migrations").
			WithDetailf("current version: %d", version)
	}

	version, dirty, err := m.Version()
	if err != nil && !stderrors.Is(err, migrate.ErrNilVersion) {
		log.Warn("Failed to get migration version", logging.Err(err))
	}

	log.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// RollbackMigration — rollback migrations by specified steps
// ─────────────────────────────────────────────────────────────────────────────

// RollbackMigration reverts the given number of migration steps.
func RollbackMigration(db *sql.DB, steps int) error {
	if steps <= 0 {
		return errors.Newf(errors.ErrCodeValidation, "steps must be greater than 0, got %d", steps)
	}
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return errors.New(errors.ErrCodeMigrationFailed, "no migrations to roll back")
		}
		return errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to roll back migrations")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// MigrationStatus — query current migration state
// ─────────────────────────────────────────────────────────────────────────────

// MigrationStatus returns the applied version and whether a previous
// migration failed half-way. A fresh database reports version 0.
func MigrationStatus(db *sql.DB) (version uint, dirty bool, err error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if err != nil {
		if stderrors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to get migration version")
	}
	return version, dirty, nil
}

//Personal.AI order the ending
