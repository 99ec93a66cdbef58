// Package site renders a static snapshot of the service: the two HTML views
// plus a data/ directory mirroring the JSON API.
//
// Layout under the output directory:
//
//	index.html
//	history.html
//	data/latest.json        the newest quote, or {} before the first one
//	data/today.json
//	data/dates.json         every day key, newest first
//	data/quotes/<date>.json one file per stored day
package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/views"
	"github.com/jsamuelsen/hourly-quotes/internal/app"
	"github.com/jsamuelsen/hourly-quotes/internal/app/readcache"
	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	defaultWorkers = 4
)

// Reader is the read layer the builder renders from.
type Reader interface {
	GetLatest(ctx context.Context) (*domain.QuoteRecord, bool)
	GetToday(ctx context.Context) []domain.QuoteRecord
	GetByDate(ctx context.Context, date string) []domain.QuoteRecord
	ListDates(ctx context.Context) []string
	History(ctx context.Context) domain.HistoryView
}

// Config configures a Builder.
type Config struct {
	Reader    Reader
	Templates *template.Template

	// OutDir receives the site. It is created if missing; existing files
	// with the same names are replaced.
	OutDir string
	Title  string

	// Workers bounds concurrent day-file writes.
	Workers int

	Logger *slog.Logger
}

// Builder writes the static site.
type Builder struct {
	reader  Reader
	tmpl    *template.Template
	outDir  string
	title   string
	workers int
	logger  *slog.Logger
}

// Result summarises one build.
type Result struct {
	OutDir   string
	Days     int
	Files    int
	Duration time.Duration
}

// New validates cfg and creates a builder.
func New(cfg Config) (*Builder, error) {
	if cfg.Reader == nil {
		return nil, errors.New("site: reader is required")
	}

	if cfg.Templates == nil {
		return nil, errors.New("site: templates are required")
	}

	if cfg.OutDir == "" {
		return nil, errors.New("site: output dir is required")
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		reader:  cfg.Reader,
		tmpl:    cfg.Templates,
		outDir:  cfg.OutDir,
		title:   cfg.Title,
		workers: workers,
		logger:  logger.With(slog.String("component", "site")),
	}, nil
}

// Build renders the whole site. Every store read of the build goes through
// one read cache, so each day log is loaded once even though the history
// page and the data files both need it.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	if readcache.FromContext(ctx) == nil {
		ctx = readcache.WithContext(ctx, readcache.New())
	}

	if err := os.MkdirAll(filepath.Join(b.outDir, "data", "quotes"), dirPerm); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	w := &writer{dir: b.outDir}

	if err := b.writePages(ctx, w); err != nil {
		return nil, err
	}

	dates := b.reader.ListDates(ctx)

	if err := b.writeSnapshot(ctx, w, dates); err != nil {
		return nil, err
	}

	err := app.FanOut(ctx, b.workers, dates, func(ctx context.Context, date string) error {
		return w.json(b.reader.GetByDate(ctx, date), "data", "quotes", date+".json")
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		OutDir:   b.outDir,
		Days:     len(dates),
		Files:    int(w.files.Load()),
		Duration: time.Since(start),
	}

	b.logger.InfoContext(ctx, "site built",
		slog.String("out_dir", res.OutDir),
		slog.Int("days", res.Days),
		slog.Int("files", res.Files),
		slog.Duration("duration", res.Duration))

	return res, nil
}

func (b *Builder) writePages(ctx context.Context, w *writer) error {
	home := views.HomePage{Title: b.title, Links: views.StaticLinks}
	if rec, ok := b.reader.GetLatest(ctx); ok {
		home.Latest = rec
	}

	if err := b.writePage(w, views.HomeTemplate, "index.html", home); err != nil {
		return err
	}

	history := b.reader.History(ctx)

	return b.writePage(w, views.HistoryTemplate, "history.html", views.HistoryPage{
		Title: b.title + " - History",
		Links: views.StaticLinks,
		Today: history.Today,
		Days:  history.Days,
	})
}

func (b *Builder) writePage(w *writer, name, file string, data any) error {
	var buf bytes.Buffer
	if err := views.Render(&buf, b.tmpl, name, data); err != nil {
		return err
	}

	return w.file(buf.Bytes(), file)
}

// writeSnapshot writes the API mirrors. latest.json is {} before the first
// quote, the same body GET /api/latest answers.
func (b *Builder) writeSnapshot(ctx context.Context, w *writer, dates []string) error {
	var latest any = struct{}{}
	if rec, ok := b.reader.GetLatest(ctx); ok {
		latest = rec
	}

	if err := w.json(latest, "data", "latest.json"); err != nil {
		return err
	}

	if err := w.json(b.reader.GetToday(ctx), "data", "today.json"); err != nil {
		return err
	}

	return w.json(dates, "data", "dates.json")
}

// writer puts files under dir and counts them. Safe for concurrent use.
type writer struct {
	dir   string
	files atomic.Int64
}

func (w *writer) json(v any, elem ...string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Join(elem...), err)
	}

	return w.file(append(data, '\n'), elem...)
}

func (w *writer) file(data []byte, elem ...string) error {
	path := filepath.Join(append([]string{w.dir}, elem...)...)

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	w.files.Add(1)

	return nil
}
