package database

import (
	"embed"
	"errors"
	"fmt"

	"shareit/internal/config"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// migrate applies the embedded schema. The migrate instance is not closed
// because closing it would close the shared connection pool.
func (db *DB) migrate(cfg config.DatabaseConfig) error {
	var (
		dir    string
		name   string
		driver migratedb.Driver
		err    error
	)

	switch db.driver {
	case config.DriverPostgres:
		dir, name = "migrations/postgres", "pgx5"
		driver, err = migratepgx.WithInstance(db.conn.DB, &migratepgx.Config{
			MigrationsTable: cfg.Postgres.MigrationTable,
		})
	default:
		dir, name = "migrations/sqlite", "sqlite3"
		driver, err = migratesqlite.WithInstance(db.conn.DB, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to init migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	db.logger.Debug().Uint("version", version).Bool("dirty", dirty).Msg("Schema migrated")
	return nil
}
