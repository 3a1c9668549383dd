package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu postgres dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // goqu sqlite3 dialect
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// DB is the relational domain.Store. A DB returned by InTx is bound to one transaction.
type DB struct {
	conn    *sqlx.DB
	q       queryer
	tx      *sqlx.Tx
	dialect goqu.DialectWrapper
	driver  string
	path    string
	logger  *zerolog.Logger
}

var _ domain.Store = (*DB)(nil)

// sqliteDriver is go-sqlite3 with ulower(), a Unicode lower(). The built-in LOWER folds ASCII only.
const sqliteDriver = "sqlite3_shareit"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("ulower", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

func Open(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	var (
		driverName string
		dsn        string
		dialect    string
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		driverName, dsn, dialect = "pgx", cfg.Postgres.DSN(), "postgres"
	case config.DriverSQLite, "":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		driverName, dsn, dialect = sqliteDriver, cfg.Path+"?_foreign_keys=on&_busy_timeout=5000", "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driverName == sqliteDriver {
		// single writer; also keeps an in-memory database on one connection
		conn.SetMaxOpenConns(1)
	} else if cfg.Postgres.MaxConnections > 0 {
		conn.SetMaxOpenConns(cfg.Postgres.MaxConnections)
	}
	conn.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		conn:    conn,
		q:       conn,
		dialect: goqu.Dialect(dialect),
		driver:  cfg.Driver,
		path:    cfg.Path,
		logger:  logger,
	}
	if db.driver == "" {
		db.driver = config.DriverSQLite
	}

	if err := db.migrate(cfg); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info().Str("driver", db.driver).Msg("Database initialized")
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Path is the sqlite file backing the store, empty for postgres.
func (db *DB) Path() string {
	if db.driver != config.DriverSQLite {
		return ""
	}
	return db.path
}

func (db *DB) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if db.tx != nil {
		return fn(db)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	bound := *db
	bound.q = tx
	bound.tx = tx

	if err := fn(&bound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) get(ctx context.Context, dest interface{}, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if err := db.q.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNoRecord
		}
		return err
	}
	return nil
}

func (db *DB) selectAll(ctx context.Context, dest interface{}, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return db.q.SelectContext(ctx, dest, query, args...)
}

// insert runs the statement and returns the generated id.
func (db *DB) insert(ctx context.Context, ds *goqu.InsertDataset) (int64, error) {
	ds = ds.Prepared(true)

	if db.driver == config.DriverPostgres {
		query, args, err := ds.Returning("id").ToSQL()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert: %w", err)
		}
		var id int64
		if err := db.q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}
	res, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type statement interface {
	ToSQL() (string, []interface{}, error)
}

// exec runs an update or delete and reports ErrNoRecord when nothing matched.
func (db *DB) exec(ctx context.Context, st statement) error {
	query, args, err := st.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build statement: %w", err)
	}
	res, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNoRecord
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

// lowerFunc names the SQL function that lower-cases text with full Unicode folding.
func (db *DB) lowerFunc() string {
	if db.driver == config.DriverSQLite {
		return "ulower"
	}
	return "LOWER"
}

func utc(t time.Time) time.Time {
	return t.UTC()
}
