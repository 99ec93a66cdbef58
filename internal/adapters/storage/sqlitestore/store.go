// Package sqlitestore implements ports.QuoteStore on an embedded SQLite
// database. It is an alternative to the JSON directory for deployments that
// prefer a single file.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timestampLayout keeps sub-second precision and sorts lexically in UTC.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Config configures the SQLite store.
type Config struct {
	// Path is the database file. Its directory is created if missing.
	Path string

	// Location decides which calendar day a record belongs to.
	// Nil means time.Local.
	Location *time.Location

	// Logger is an optional logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Store is a ports.QuoteStore backed by SQLite.
type Store struct {
	db     *sql.DB
	loc    *time.Location
	logger *slog.Logger
}

// Open opens (or creates) the database and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlitestore: path is required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: a single writer, and readers queue behind it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		db:     db,
		loc:    loc,
		logger: logger.With(slog.String("component", "sqlitestore")),
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts rec into its day log.
func (s *Store) Append(ctx context.Context, rec domain.QuoteRecord) error {
	key := domain.DateKey(rec.GeneratedAt, s.loc)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (date_key, quote, theme, tone, audience, generated_at, hour)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, rec.Text, rec.Theme, rec.Tone, rec.Audience,
		rec.GeneratedAt.UTC().Format(timestampLayout), rec.Hour,
	)
	if err != nil {
		return domain.NewStoreError("write", key, err)
	}

	s.logger.DebugContext(ctx, "quote appended", slog.String("date", key))

	return nil
}

// Latest returns the last record of the newest day, or nil if the table is empty.
// Like the file store, day order wins over insertion order.
func (s *Store) Latest(ctx context.Context) (*domain.QuoteRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT quote, theme, tone, audience, generated_at, hour
		 FROM quotes ORDER BY date_key DESC, id DESC LIMIT 1`)
	if err != nil {
		return nil, domain.NewStoreError("read", domain.KeyLatest, err)
	}

	records, err := scanRecords(rows)
	if err != nil {
		return nil, domain.NewStoreError("read", domain.KeyLatest, err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	return &records[0], nil
}

// ByDate returns the day log for date in insertion order.
func (s *Store) ByDate(ctx context.Context, date string) ([]domain.QuoteRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT quote, theme, tone, audience, generated_at, hour
		 FROM quotes WHERE date_key = ? ORDER BY id`, date)
	if err != nil {
		return nil, domain.NewStoreError("read", date, err)
	}

	records, err := scanRecords(rows)
	if err != nil {
		return nil, domain.NewStoreError("read", date, err)
	}

	return records, nil
}

// ListDates returns every date with at least one record, most recent first.
func (s *Store) ListDates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT date_key FROM quotes ORDER BY date_key DESC`)
	if err != nil {
		return nil, domain.NewStoreError("list", "", err)
	}
	defer func() { _ = rows.Close() }()

	dates := []string{}
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, domain.NewStoreError("list", "", err)
		}

		dates = append(dates, date)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list", "", err)
	}

	return dates, nil
}

// Name returns the health check name.
// Implements ports.HealthChecker.
func (s *Store) Name() string {
	return "quote-store"
}

// Check pings the database.
// Implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanRecords(rows *sql.Rows) ([]domain.QuoteRecord, error) {
	defer func() { _ = rows.Close() }()

	records := []domain.QuoteRecord{}
	for rows.Next() {
		var (
			rec domain.QuoteRecord
			ts  string
		)

		if err := rows.Scan(&rec.Text, &rec.Theme, &rec.Tone, &rec.Audience, &ts, &rec.Hour); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}

		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}

		rec.GeneratedAt = at
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return records, nil
}

// migrate applies embedded migrations that are not yet recorded.
func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		version := filepath.Base(file)
		if applied[version] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", version, err)
		}

		if err := s.applyMigration(ctx, version, upSection(string(content))); err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "migration applied", slog.String("version", version))
	}

	return nil
}

func (s *Store) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}

		applied[version] = true
	}

	return applied, rows.Err()
}

func (s *Store) applyMigration(ctx context.Context, version, stmt string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", version, err)
	}

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute migration %s: %w", version, err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}

	return nil
}

// upSection returns the statements between the Up and Down markers.
func upSection(content string) string {
	if idx := strings.Index(content, "-- +migrate Down"); idx >= 0 {
		content = content[:idx]
	}

	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(content), "-- +migrate Up"))
}
