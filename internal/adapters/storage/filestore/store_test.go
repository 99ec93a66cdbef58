package filestore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

func newTestStore(t *testing.T, mirrors bool) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := New(Config{
		Dir:          dir,
		Location:     time.UTC,
		WriteMirrors: mirrors,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return store, dir
}

func record(text string, at time.Time) domain.QuoteRecord {
	return domain.QuoteRecord{
		Text:        text,
		Theme:       "life",
		Tone:        "inspirational",
		Audience:    "general",
		GeneratedAt: at,
		Hour:        at.Hour(),
	}
}

func readFile[T any](t *testing.T, path string) T {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var v T
	require.NoError(t, json.Unmarshal(data, &v))

	return v
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNew_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "quotes")

	_, err := New(Config{Dir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAppend_FirstRecordOfDay(t *testing.T) {
	store, dir := newTestStore(t, true)
	rec := record("First light.", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	require.NoError(t, store.Append(context.Background(), rec))

	day := readFile[[]domain.QuoteRecord](t, filepath.Join(dir, "2024-03-15.json"))
	require.Len(t, day, 1)
	assert.Equal(t, "First light.", day[0].Text)

	today := readFile[[]domain.QuoteRecord](t, filepath.Join(dir, "today.json"))
	assert.Equal(t, day, today)

	latest := readFile[domain.QuoteRecord](t, filepath.Join(dir, "latest.json"))
	assert.Equal(t, "First light.", latest.Text)
	assert.True(t, rec.GeneratedAt.Equal(latest.GeneratedAt))
}

func TestAppend_PreservesOrderWithinDay(t *testing.T) {
	store, dir := newTestStore(t, true)
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	for i, text := range []string{"one", "two", "three"} {
		require.NoError(t, store.Append(context.Background(), record(text, base.Add(time.Duration(i)*time.Hour))))
	}

	day := readFile[[]domain.QuoteRecord](t, filepath.Join(dir, "2024-03-15.json"))
	require.Len(t, day, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{day[0].Text, day[1].Text, day[2].Text})

	latest := readFile[domain.QuoteRecord](t, filepath.Join(dir, "latest.json"))
	assert.Equal(t, "three", latest.Text)
}

func TestAppend_NewDayStartsFreshLog(t *testing.T) {
	store, dir := newTestStore(t, true)

	require.NoError(t, store.Append(context.Background(), record("late", time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC))))
	require.NoError(t, store.Append(context.Background(), record("early", time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC))))

	prev := readFile[[]domain.QuoteRecord](t, filepath.Join(dir, "2024-03-15.json"))
	assert.Len(t, prev, 1)

	today := readFile[[]domain.QuoteRecord](t, filepath.Join(dir, "today.json"))
	require.Len(t, today, 1)
	assert.Equal(t, "early", today[0].Text)
}

func TestAppend_DateKeyUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := New(Config{Dir: dir, Location: tokyo})
	require.NoError(t, err)

	// 20:00 UTC on the 15th is 05:00 on the 16th in Tokyo.
	require.NoError(t, store.Append(context.Background(), record("east", time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC))))

	assert.FileExists(t, filepath.Join(dir, "2024-03-16.json"))
	assert.NoFileExists(t, filepath.Join(dir, "2024-03-15.json"))
}

func TestAppend_WithoutMirrors(t *testing.T) {
	store, dir := newTestStore(t, false)

	require.NoError(t, store.Append(context.Background(), record("quiet", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))))

	assert.FileExists(t, filepath.Join(dir, "2024-03-15.json"))
	assert.NoFileExists(t, filepath.Join(dir, "today.json"))
	assert.NoFileExists(t, filepath.Join(dir, "latest.json"))
}

func TestAppend_CorruptDayLogIsNotOverwritten(t *testing.T) {
	store, dir := newTestStore(t, true)
	path := filepath.Join(dir, "2024-03-15.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := store.Append(context.Background(), record("lost", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)))

	require.Error(t, err)
	assert.True(t, domain.IsStore(err))

	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "read", storeErr.Op)
	assert.Equal(t, "2024-03-15", storeErr.Key)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "latest.json"))
}

func TestAppend_TodayMirrorFailureStopsLatest(t *testing.T) {
	store, dir := newTestStore(t, true)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "today.json"), 0o755))

	err := store.Append(context.Background(), record("partial", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))

	require.Error(t, err)
	assert.True(t, domain.IsStore(err))

	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "write", storeErr.Op)
	assert.Equal(t, domain.KeyToday, storeErr.Key)

	day := readFile[[]domain.QuoteRecord](t, filepath.Join(dir, "2024-01-01.json"))
	require.Len(t, day, 1)
	assert.Equal(t, "partial", day[0].Text)
	assert.NoFileExists(t, filepath.Join(dir, "latest.json"))

	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestAppend_CanceledContext(t *testing.T) {
	store, dir := newTestStore(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Append(ctx, record("never", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)))

	require.Error(t, err)
	assert.True(t, domain.IsStore(err))
	assert.NoFileExists(t, filepath.Join(dir, "2024-03-15.json"))
}

func TestAppend_WritesIndentedJSON(t *testing.T) {
	store, dir := newTestStore(t, false)

	require.NoError(t, store.Append(context.Background(), record("pretty", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))))

	data, err := os.ReadFile(filepath.Join(dir, "2024-03-15.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[\n  {\n    \"quote\": \"pretty\"")
}

func TestAppend_LeavesNoTempFiles(t *testing.T) {
	store, dir := newTestStore(t, true)

	require.NoError(t, store.Append(context.Background(), record("clean", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))))

	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestAppend_ConcurrentAppendsAreSerialised(t *testing.T) {
	store, _ := newTestStore(t, true)
	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Append(context.Background(), record("race", at)))
		}()
	}
	wg.Wait()

	day, err := store.ByDate(context.Background(), "2024-03-15")
	require.NoError(t, err)
	assert.Len(t, day, 20)
}

func TestLatest_Empty(t *testing.T) {
	store, _ := newTestStore(t, true)

	latest, err := store.Latest(context.Background())

	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestLatest_DerivedFromNewestDay(t *testing.T) {
	store, dir := newTestStore(t, true)
	require.NoError(t, store.Append(context.Background(), record("old", time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC))))
	require.NoError(t, store.Append(context.Background(), record("new", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))))

	// The mirror is never read back.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.json"), []byte(`{"quote":"stale"}`), 0o644))

	latest, err := store.Latest(context.Background())

	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "new", latest.Text)
}

func TestLatest_NewestDayWinsOverLaterAppend(t *testing.T) {
	store, dir := newTestStore(t, true)
	require.NoError(t, store.Append(context.Background(), record("newer day", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))))
	require.NoError(t, store.Append(context.Background(), record("older day", time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC))))

	latest, err := store.Latest(context.Background())

	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "newer day", latest.Text)

	mirror := readFile[domain.QuoteRecord](t, filepath.Join(dir, "latest.json"))
	assert.Equal(t, "older day", mirror.Text, "the mirror tracks the last append")
}

func TestLatest_SkipsCorruptDay(t *testing.T) {
	store, dir := newTestStore(t, false)
	require.NoError(t, store.Append(context.Background(), record("older", time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-03-15.json"), []byte("garbage"), 0o644))

	latest, err := store.Latest(context.Background())

	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "older", latest.Text)
}

func TestByDate(t *testing.T) {
	store, dir := newTestStore(t, true)
	require.NoError(t, store.Append(context.Background(), record("kept", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "..", "outside.json"), []byte(`[{"quote":"escape"}]`), 0o644))

	tests := []struct {
		name string
		date string
		want int
	}{
		{name: "stored day", date: "2024-03-15", want: 1},
		{name: "unknown day", date: "2023-01-01", want: 0},
		{name: "malformed key", date: "yesterday", want: 0},
		{name: "mirror name", date: "today", want: 0},
		{name: "latest mirror", date: "latest", want: 0},
		{name: "path traversal", date: "../outside", want: 0},
		{name: "separator", date: "a/b", want: 0},
		{name: "empty", date: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ByDate(context.Background(), tt.date)

			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestByDate_CorruptLogIsStoreError(t *testing.T) {
	store, dir := newTestStore(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-03-15.json"), []byte("[{"), 0o644))

	_, err := store.ByDate(context.Background(), "2024-03-15")

	require.Error(t, err)
	assert.True(t, domain.IsStore(err))
}

func TestByDate_LegacyMillisecondTimestamps(t *testing.T) {
	store, dir := newTestStore(t, false)
	legacy := `[{"quote":"Old","theme":"life","tone":"calm","audience":"all","timestamp":"2024-03-15T09:00:00.123Z","hour":9}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-03-15.json"), []byte(legacy), 0o644))

	got, err := store.ByDate(context.Background(), "2024-03-15")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 123*time.Millisecond, time.Duration(got[0].GeneratedAt.Nanosecond()))
}

func TestListDates(t *testing.T) {
	store, dir := newTestStore(t, true)

	for _, name := range []string{"2024-03-14.json", "2024-03-16.json", "2023-12-31.json", "notes.json", "2024-3-1.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2024-01-01.json"), 0o755))
	require.NoError(t, store.Append(context.Background(), record("mirrors", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))))

	dates, err := store.ListDates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-16", "2024-03-15", "2024-03-14", "2023-12-31"}, dates)
}

func TestListDates_MissingDir(t *testing.T) {
	store, dir := newTestStore(t, false)
	require.NoError(t, os.RemoveAll(dir))

	dates, err := store.ListDates(context.Background())

	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestHealthCheck(t *testing.T) {
	store, dir := newTestStore(t, false)

	assert.Equal(t, "quote-store", store.Name())
	require.NoError(t, store.Check(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, store.Check(context.Background()))
}
