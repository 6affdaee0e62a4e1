package news

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.June, d, 9, 0, 0, 0, time.UTC)
}

func seededStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Upsert(context.Background(),
		Article{ID: "1", Title: "Gemini adds tool calling", URL: "https://a.example/1", Date: day(1), Domain: "a.example"},
		Article{ID: "2", Title: "Open weights roundup", URL: "https://b.example/2", Date: day(3), Domain: "b.example"},
		Article{ID: "3", Title: "Benchmarks under fire", URL: "https://a.example/3", Date: day(5), Domain: "a.example"},
		Article{ID: "4", Title: "Undated post", URL: "https://c.example/4", Domain: "c.example"},
	))
	return store
}

func ids(articles []Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func TestSQLiteStore_ListAllNewestFirst(t *testing.T) {
	store := seededStore(t)

	articles, err := store.List(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1", "4"}, ids(articles))
	assert.Equal(t, day(5), articles[0].Date)
	assert.Equal(t, Epoch, articles[3].Date)

	limited, err := store.List(context.Background(), Query{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, ids(limited))
}

func TestSQLiteStore_Filters(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	byDomain, err := store.List(ctx, Query{Domain: "a.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, ids(byDomain))

	search, err := store.List(ctx, Query{Search: "GEMINI"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(search))

	searchDomain, err := store.List(ctx, Query{Search: "b.exam", Domain: "a.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(searchDomain))

	start, end := day(2), day(5)
	ranged, err := store.List(ctx, Query{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, ids(ranged))
}

func TestSQLiteStore_SearchFoldsUnicode(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx,
		Article{ID: "5", Title: "Über die neuen Modelle", URL: "https://d.example/5", Date: day(6), Domain: "d.example"},
		Article{ID: "6", Title: "ÉTAT DE L'IA", URL: "https://d.example/6", Date: day(7), Domain: "d.example"},
	))

	upper, err := store.List(ctx, Query{Search: "ÜBER"})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(upper))

	lower, err := store.List(ctx, Query{Search: "über"})
	require.NoError(t, err)
	assert.Equal(t, ids(upper), ids(lower))

	etat, err := store.List(ctx, Query{Search: "état", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"6"}, ids(etat))

	limited, err := store.List(ctx, Query{Search: "example", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"6", "5"}, ids(limited))
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Article{ID: "1", Title: "Gemini adds tool calling (updated)", URL: "https://a.example/1", Date: day(6), Domain: "a.example"}))
	require.NoError(t, store.Upsert(ctx, Article{Title: "No id", URL: "https://d.example", Date: day(2), Domain: "d.example"}))

	articles, err := store.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, articles, 5)
	assert.Equal(t, "1", articles[0].ID)
	assert.Equal(t, "Gemini adds tool calling (updated)", articles[0].Title)

	fresh, err := store.List(ctx, Query{Domain: "d.example"})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Len(t, fresh[0].ID, 26)
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, config.StoreConfig{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "news.db")})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(ctx, config.StoreConfig{Backend: "sqlite"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, newsErrors.ErrInvalidInput))

	_, err = Open(ctx, config.StoreConfig{Backend: "firestore"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, newsErrors.ErrInvalidInput))

	_, err = Open(ctx, config.StoreConfig{Backend: "mongo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, newsErrors.ErrInvalidInput))
}
