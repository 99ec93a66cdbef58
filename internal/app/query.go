package app

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/jsamuelsen/hourly-quotes/internal/app/readcache"
	"github.com/jsamuelsen/hourly-quotes/internal/domain"
	"github.com/jsamuelsen/hourly-quotes/internal/ports"
)

// defaultReadConcurrency bounds parallel day-log reads when unset.
const defaultReadConcurrency = 8

// QueryServiceConfig contains the dependencies of the read layer.
type QueryServiceConfig struct {
	Store ports.QuoteStore

	// Location is the zone whose calendar defines "today". Nil means time.Local.
	Location *time.Location

	// Clock defaults to ports.SystemClock.
	Clock ports.Clock

	// ReadConcurrency bounds parallel day-log reads in History.
	ReadConcurrency int

	Logger *slog.Logger
}

// QueryService answers read queries over the quote store.
//
// It never fails: unreadable data is logged at WARN and treated as absent,
// and "nothing yet" is an ordinary answer. Reads go through readcache when
// the context carries one.
type QueryService struct {
	store       ports.QuoteStore
	loc         *time.Location
	clock       ports.Clock
	concurrency int
	logger      *slog.Logger
}

// NewQueryService creates the read layer. Panics if Store is nil.
func NewQueryService(cfg QueryServiceConfig) *QueryService {
	if cfg.Store == nil {
		panic("QueryService: Store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock
	}

	concurrency := cfg.ReadConcurrency
	if concurrency <= 0 {
		concurrency = defaultReadConcurrency
	}

	return &QueryService{
		store:       cfg.Store,
		loc:         loc,
		clock:       clock,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "app.QueryService")),
	}
}

// TodayKey returns the date key of the current day in the configured location.
func (s *QueryService) TodayKey() string {
	return domain.DateKey(s.clock.Now(), s.loc)
}

// GetLatest returns the most recent quote. The bool is false when no quote
// has been generated yet.
func (s *QueryService) GetLatest(ctx context.Context) (*domain.QuoteRecord, bool) {
	rec, err := readcache.GetOrFetch(ctx, "latest", s.store.Latest)
	if err != nil {
		s.logger.WarnContext(ctx, "latest quote unreadable", slog.Any("error", err))
		return nil, false
	}

	return rec, rec != nil
}

// GetToday returns today's quotes in generation order.
func (s *QueryService) GetToday(ctx context.Context) []domain.QuoteRecord {
	return s.GetByDate(ctx, s.TodayKey())
}

// GetByDate returns the log for date, or an empty slice. The key is opaque:
// values that cannot name a stored day simply find nothing.
func (s *QueryService) GetByDate(ctx context.Context, date string) []domain.QuoteRecord {
	records, err := s.loadDay(ctx, date)
	if err != nil {
		s.logger.WarnContext(ctx, "day log unreadable",
			slog.String("date", date),
			slog.Any("error", err))

		return []domain.QuoteRecord{}
	}

	return records
}

// ListDates returns every stored day key, strictly descending.
func (s *QueryService) ListDates(ctx context.Context) []string {
	dates, err := readcache.GetOrFetch(ctx, "dates", s.store.ListDates)
	if err != nil {
		s.logger.WarnContext(ctx, "date listing unreadable", slog.Any("error", err))
		return []string{}
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if domain.IsDateKey(d) {
			out = append(out, d)
		}
	}

	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)

	return out
}

// History returns today's quotes plus every earlier day that has quotes,
// most recent first. Today is never repeated among the earlier days.
func (s *QueryService) History(ctx context.Context) domain.HistoryView {
	today := s.TodayKey()

	todays, dates, _ := Parallel2(ctx,
		func(ctx context.Context) ([]domain.QuoteRecord, error) { return s.GetByDate(ctx, today), nil },
		func(ctx context.Context) ([]string, error) { return s.ListDates(ctx), nil },
	)

	past := slices.DeleteFunc(dates, func(d string) bool { return d == today })
	loaded := MapPartial(ctx, s.concurrency, past, s.loadDay)

	view := domain.HistoryView{
		Today: todays,
		Days:  make([]domain.DayQuotes, 0, len(past)),
	}

	for i, r := range loaded {
		if r.Err != nil {
			s.logger.WarnContext(ctx, "skipping unreadable day",
				slog.String("date", past[i]),
				slog.Any("error", r.Err))

			continue
		}

		if len(r.Value) == 0 {
			continue
		}

		view.Days = append(view.Days, domain.DayQuotes{
			Date:        past[i],
			DisplayDate: domain.DisplayDate(past[i]),
			Quotes:      r.Value,
		})
	}

	return view
}

func (s *QueryService) loadDay(ctx context.Context, date string) ([]domain.QuoteRecord, error) {
	records, err := readcache.GetOrFetch(ctx, "day:"+date, func(ctx context.Context) ([]domain.QuoteRecord, error) {
		return s.store.ByDate(ctx, date)
	})
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []domain.QuoteRecord{}
	}

	return records, nil
}
