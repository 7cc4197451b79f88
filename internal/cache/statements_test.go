package cache_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/relations-dil/go-relations-sqlite/internal/cache"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	// A memory database exists per connection.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestStmtCacheReuse(t *testing.T) {
	t.Parallel()

	c := cache.New(openDB(t), 4)

	first, err := c.Get(t.Context(), "SELECT 1")
	require.NoError(t, err)

	second, err := c.Get(t.Context(), "SELECT 1")
	require.NoError(t, err)
	assert.Same(t, first, second)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 0.5, stats.HitRate())
}

func TestStmtCacheEviction(t *testing.T) {
	t.Parallel()

	c := cache.New(openDB(t), 2)

	queries := []string{"SELECT 1", "SELECT 2", "SELECT 3"}
	for _, query := range queries {
		_, err := c.Get(t.Context(), query)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Stats().Entries)

	// The oldest statement was evicted, so it prepares again.
	_, err := c.Get(t.Context(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.Misses())
	assert.Equal(t, int64(0), c.Hits())
}

func TestStmtCacheClose(t *testing.T) {
	t.Parallel()

	c := cache.New(openDB(t), 4)

	_, err := c.Get(t.Context(), "SELECT 1")
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Stats().Entries)

	// Usable after close.
	_, err = c.Get(t.Context(), "SELECT 1")
	require.NoError(t, err)
}

func TestStmtCacheDefaultCapacity(t *testing.T) {
	t.Parallel()

	c := cache.New(openDB(t), 0)
	assert.Equal(t, cache.DefaultCapacity, c.Stats().Capacity)
}
