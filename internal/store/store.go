// Package store persists transactions, categories and the mapping tables in a relational
// database. SQLite is the default; PostgreSQL is selected with the pgx driver.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"sms-ledger/internal/config"
	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Store is the database/sql backed repository.
type Store struct {
	db     *sql.DB
	driver string
	logger logging.Logger
}

// Open connects to the configured database. It does not run migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger logging.Logger) (*Store, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case config.DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), models.PermissionDirectory); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		dsn = withForeignKeys(dsn)
	case config.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// A single connection keeps writers serialized and :memory: databases shared.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(db, cfg.Driver, logger), nil
}

// New wraps an open handle. driver is one of config.DriverSQLite or config.DriverPostgres.
func New(db *sql.DB, driver string, logger logging.Logger) *Store {
	return &Store{db: db, driver: driver, logger: logging.OrDefault(logger)}
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the database/sql driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Migrate applies every pending embedded migration.
func (s *Store) Migrate(ctx context.Context) error {
	dialect, dir := "sqlite3", "migrations/sqlite"
	if s.driver == config.DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{s.logger})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	s.logger.Info("Database schema is up to date", logging.F(logging.FieldDriver, s.driver))
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL. Queries in this package never
// contain a literal question mark.
func (s *Store) rebind(query string) string {
	if s.driver != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// mapError translates driver constraint errors into the parsererror taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", parsererror.ErrAlreadyExists, err)
		case sqlite3.ErrConstraintForeignKey:
			return &parsererror.ValidationError{Reason: "referenced row does not exist"}
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return &parsererror.ValidationError{Reason: sqliteErr.Error()}
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %v", parsererror.ErrAlreadyExists, err)
		case "23503":
			return &parsererror.ValidationError{Reason: "referenced row does not exist"}
		case "23502", "23514":
			return &parsererror.ValidationError{Reason: pgErr.Message}
		}
	}
	return err
}

type gooseLogger struct {
	logger logging.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
