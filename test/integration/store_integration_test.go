//go:build integration

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/storage/filestore"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/storage/sqlitestore"
	"github.com/jsamuelsen/hourly-quotes/internal/domain"
	"github.com/jsamuelsen/hourly-quotes/internal/ports"
)

type storeFactory func(t *testing.T) ports.QuoteStore

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"file": func(t *testing.T) ports.QuoteStore {
			s, err := filestore.New(filestore.Config{
				Dir:          t.TempDir(),
				Location:     time.UTC,
				WriteMirrors: true,
				Logger:       quietLogger(),
			})
			require.NoError(t, err)

			return s
		},
		"sqlite": func(t *testing.T) ports.QuoteStore {
			s, err := sqlitestore.Open(context.Background(), sqlitestore.Config{
				Path:     filepath.Join(t.TempDir(), "quotes.db"),
				Location: time.UTC,
				Logger:   quietLogger(),
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			return s
		},
	}
}

func recordAt(i int, at time.Time) domain.QuoteRecord {
	return domain.NewQuoteRecord(fmt.Sprintf("quote %d", i), domain.HourlyParameters{
		Theme:    "focus",
		Tone:     "calm",
		Audience: "engineers",
		Hour:     at.Hour(),
	}, at)
}

// TestStore_ReadersNeverSeePartialLogs appends while readers poll the same
// day. Every read must decode and only ever grow.
func TestStore_ReadersNeverSeePartialLogs(t *testing.T) {
	const appends = 40

	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()
			day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

			var (
				wg       sync.WaitGroup
				done     atomic.Bool
				readErrs atomic.Int32
				shrank   atomic.Int32
			)

			for range 4 {
				wg.Go(func() {
					last := 0
					for !done.Load() {
						recs, err := store.ByDate(ctx, "2024-03-15")
						if err != nil {
							readErrs.Add(1)
							continue
						}

						if len(recs) < last {
							shrank.Add(1)
						}

						last = len(recs)
					}
				})
			}

			for i := range appends {
				require.NoError(t, store.Append(ctx, recordAt(i, day.Add(time.Duration(i)*time.Minute))))
			}

			done.Store(true)
			wg.Wait()

			assert.Zero(t, readErrs.Load(), "reads failed while appending")
			assert.Zero(t, shrank.Load(), "a reader saw the log shrink")

			recs, err := store.ByDate(ctx, "2024-03-15")
			require.NoError(t, err)
			require.Len(t, recs, appends)

			for i, rec := range recs {
				assert.Equal(t, fmt.Sprintf("quote %d", i), rec.Text)
			}

			latest, err := store.Latest(ctx)
			require.NoError(t, err)
			require.NotNil(t, latest)
			assert.Equal(t, fmt.Sprintf("quote %d", appends-1), latest.Text)
		})
	}
}

// TestStore_DaysAcrossMidnight checks that the date key follows the
// configured calendar, and that listing is newest first.
func TestStore_DaysAcrossMidnight(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := context.Background()

			for i, at := range []time.Time{
				time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC),
			} {
				require.NoError(t, store.Append(ctx, recordAt(i, at)))
			}

			dates, err := store.ListDates(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"2024-03-15", "2024-03-14"}, dates)

			yesterday, err := store.ByDate(ctx, "2024-03-14")
			require.NoError(t, err)
			require.Len(t, yesterday, 1)
			assert.Equal(t, 23, yesterday[0].Hour)

			today, err := store.ByDate(ctx, "2024-03-15")
			require.NoError(t, err)
			assert.Len(t, today, 2)
		})
	}
}
