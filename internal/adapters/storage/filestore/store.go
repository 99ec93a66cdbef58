// Package filestore implements ports.QuoteStore as a directory of JSON files.
//
// Layout:
//
//	<dir>/<YYYY-MM-DD>.json   per-day log, a JSON array in append order
//	<dir>/today.json          mirror of the current day's log
//	<dir>/latest.json         mirror of the newest record, a single object
//
// The per-day logs are the source of truth. The mirrors exist for external
// consumers of the directory and are never read back.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

const (
	fileExt  = ".json"
	dirPerm  = 0o755
	filePerm = 0o644

	// jsonIndent matches the two-space layout of existing data directories.
	jsonIndent = "  "
)

var dayFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.json$`)

// Config configures the file store.
type Config struct {
	// Dir holds the JSON files. It is created if missing.
	Dir string

	// Location decides which calendar day a record belongs to.
	// Nil means time.Local.
	Location *time.Location

	// WriteMirrors also rewrites today.json and latest.json on Append.
	WriteMirrors bool

	// Logger is an optional logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Store is a ports.QuoteStore backed by JSON files.
// Appends are serialised within the process; readers take no lock and rely
// on atomic file replacement.
type Store struct {
	dir     string
	loc     *time.Location
	mirrors bool
	logger  *slog.Logger

	mu sync.Mutex
}

// New creates a file store, creating the directory if needed.
func New(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("filestore: dir is required")
	}

	if err := os.MkdirAll(cfg.Dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		dir:     cfg.Dir,
		loc:     loc,
		mirrors: cfg.WriteMirrors,
		logger:  logger.With(slog.String("component", "filestore")),
	}, nil
}

// Append adds rec to its day log, then refreshes the mirrors.
// Steps run in order and the first failure aborts the rest. A day log that
// exists but cannot be decoded is never overwritten.
func (s *Store) Append(ctx context.Context, rec domain.QuoteRecord) error {
	key := domain.DateKey(rec.GeneratedAt, s.loc)

	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("append", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readLog(key)
	if err != nil {
		return domain.NewStoreError("read", key, err)
	}

	records = append(records, rec)

	if err := s.writeJSON(key, records); err != nil {
		return domain.NewStoreError("write", key, err)
	}

	if s.mirrors {
		if err := s.writeJSON(domain.KeyToday, records); err != nil {
			return domain.NewStoreError("write", domain.KeyToday, err)
		}

		if err := s.writeJSON(domain.KeyLatest, rec); err != nil {
			return domain.NewStoreError("write", domain.KeyLatest, err)
		}
	}

	s.logger.DebugContext(ctx, "quote appended",
		slog.String("date", key),
		slog.Int("count", len(records)))

	return nil
}

// Latest returns the last record of the newest non-empty day log.
// Day order wins over append order: a record appended later for an earlier
// day, as after a timezone change, does not become latest.
// Day logs that cannot be read are logged and skipped.
func (s *Store) Latest(ctx context.Context) (*domain.QuoteRecord, error) {
	dates, err := s.ListDates(ctx)
	if err != nil {
		return nil, err
	}

	for _, date := range dates {
		records, err := s.readLog(date)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping unreadable day log",
				slog.String("date", date),
				slog.Any("error", err))

			continue
		}

		if n := len(records); n > 0 {
			latest := records[n-1]
			return &latest, nil
		}
	}

	return nil, nil
}

// ByDate returns the log stored under date. Keys that cannot name a day log
// yield an empty slice. Unreadable logs return a StoreError.
func (s *Store) ByDate(ctx context.Context, date string) ([]domain.QuoteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("read", date, err)
	}

	if !isLogKey(date) {
		return []domain.QuoteRecord{}, nil
	}

	records, err := s.readLog(date)
	if err != nil {
		return nil, domain.NewStoreError("read", date, err)
	}

	if records == nil {
		records = []domain.QuoteRecord{}
	}

	return records, nil
}

// ListDates returns the keys of all day logs, most recent first.
func (s *Store) ListDates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("list", "", err)
	}

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, domain.NewStoreError("list", "", err)
	}

	dates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if m := dayFilePattern.FindStringSubmatch(entry.Name()); m != nil {
			dates = append(dates, m[1])
		}
	}

	slices.Sort(dates)
	slices.Reverse(dates)

	return dates, nil
}

// Name returns the health check name.
// Implements ports.HealthChecker.
func (s *Store) Name() string {
	return "quote-store"
}

// Check verifies the directory exists and accepts new files.
// Implements ports.HealthChecker.
func (s *Store) Check(_ context.Context) error {
	f, err := os.CreateTemp(s.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("store dir not writable: %w", err)
	}

	name := f.Name()
	_ = f.Close()

	return os.Remove(name)
}

// readLog loads a day log. A missing file is an empty log.
func (s *Store) readLog(key string) ([]domain.QuoteRecord, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []domain.QuoteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key+fileExt, err)
	}

	return records, nil
}

// writeJSON replaces <key>.json atomically: readers see the old or the new
// content, never a partial write.
func (s *Store) writeJSON(key string, v any) error {
	data, err := json.MarshalIndent(v, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key+fileExt, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()

		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()

		return err
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		cleanup()
		return err
	}

	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// isLogKey reports whether key can name a day log inside the store directory.
// Mirror names are excluded: the mirrors are write-only.
func isLogKey(key string) bool {
	if key == "" || key == domain.KeyToday || key == domain.KeyLatest {
		return false
	}

	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") || strings.HasPrefix(key, ".") {
		return false
	}

	return filepath.Base(key) == key
}
