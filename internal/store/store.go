package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/zeebo/errs"

	_ "modernc.org/sqlite"
)

const (
	DefaultBusyTimeout     = 5 * time.Second
	DefaultMaxOpenConns    = 1
	DefaultConnMaxLifetime = 5 * time.Minute
)

// Config controls how the SQLite database is opened.
type Config struct {
	Path            string
	BusyTimeout     time.Duration
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the local single-writer configuration for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		BusyTimeout:     DefaultBusyTimeout,
		MaxOpenConns:    DefaultMaxOpenConns,
		ConnMaxLifetime: DefaultConnMaxLifetime,
	}
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database and applies pending migrations.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		return nil, errs.Combine(err, db.Close())
	}
	return &Store{db: db}, nil
}

// OpenRaw opens the database without running migrations.
func OpenRaw(cfg Config) (*sql.DB, error) {
	return openDB(cfg)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func openDB(cfg Config) (*sql.DB, error) {
	dsn, err := sqliteDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	configurePool(db, cfg)
	if err := db.Ping(); err != nil {
		return nil, errs.Combine(fmt.Errorf("open %s: %w", cfg.Path, err), db.Close())
	}
	return db, nil
}

func configurePool(db *sql.DB, cfg Config) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpenConns
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = DefaultConnMaxLifetime
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(lifetime)
}

// sqliteDSN puts pragmas in the DSN so every pooled connection gets them.
func sqliteDSN(cfg Config) (string, error) {
	if cfg.Path == "" {
		return "", fmt.Errorf("db path is required")
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = DefaultBusyTimeout
	}

	query := url.Values{}
	query.Add("_pragma", "journal_mode(WAL)")
	query.Add("_pragma", "synchronous(NORMAL)")
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", "busy_timeout("+strconv.FormatInt(busy.Milliseconds(), 10)+")")

	u := url.URL{Scheme: "file", Path: cfg.Path, RawQuery: query.Encode()}
	return u.String(), nil
}

func exists(ctx context.Context, q queryer, query string, args ...any) (bool, error) {
	var found int
	err := q.QueryRowContext(ctx, query, args...).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// dbTimeLayout is fixed width so stored timestamps sort lexically.
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z"

func dbFormatTime(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

func dbParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
