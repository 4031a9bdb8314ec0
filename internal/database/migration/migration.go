package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var files embed.FS

// Source returns the embedded schema migrations.
func Source() (source.Driver, error) {
	return iofs.New(files, "sql")
}

// EnsureMigrated applies every pending up migration to db.
// An already current schema is not an error.
func EnsureMigrated(db *sql.DB, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	l := log.WithFields(logrus.Fields{
		"component": "database",
		"db_host":   dbHost,
	})

	l.WithField("event", "db_migration_check").Info("starting")

	src, err := Source()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	drv, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		l.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("migration driver init failed")
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		l.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already current, skipping migration")
		return nil
	}
	if err != nil {
		l.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("migration failed")
		return fmt.Errorf("migrate up: %w", err)
	}

	version, _, _ := m.Version()
	l.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"version":     version,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("migrations applied")

	return nil
}
