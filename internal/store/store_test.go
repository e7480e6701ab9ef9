package store_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/store"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, dir string) store.Store {
	t.Helper()
	s, err := store.Open(store.Config{
		Driver: store.DriverSQLite,
		DBPath: filepath.Join(dir, "wattd.db"),
	}, logger.Nop())
	require.NoError(t, err)
	return s
}

func exerciseStore(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, found, err := s.Get(ctx, "@missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "@k", "one"))
	require.NoError(t, s.Set(ctx, "@k", "two"))

	v, found, err := s.Get(ctx, "@k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "two", v)

	require.NoError(t, s.Remove(ctx, "@k"))
	require.NoError(t, s.Remove(ctx, "@k"))

	_, found, err = s.Get(ctx, "@k")
	require.NoError(t, err)
	assert.False(t, found)

	err = s.Set(ctx, "", "x")
	require.Error(t, err)
	assert.Equal(t, store.ErrInvalidKey, errors.CodeOf(err))
}

func TestSQLiteStore(t *testing.T) {
	s := openSQLite(t, t.TempDir())
	defer s.Close()

	exerciseStore(t, s)
}

func TestMemoryStore(t *testing.T) {
	s, err := store.Open(store.Config{Driver: store.DriverMemory}, logger.Nop())
	require.NoError(t, err)

	exerciseStore(t, s)

	require.NoError(t, s.Close())
	err = s.Set(context.Background(), "@k", "v")
	assert.Equal(t, store.ErrClosed, errors.CodeOf(err))
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := openSQLite(t, dir)
	require.NoError(t, s.Set(ctx, "@consumptionHistory", "[1.5,2]"))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close must be idempotent")

	_, _, err := s.Get(ctx, "@consumptionHistory")
	assert.Equal(t, store.ErrClosed, errors.CodeOf(err))

	s = openSQLite(t, dir)
	defer s.Close()

	v, found, err := s.Get(ctx, "@consumptionHistory")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[1.5,2]", v)
}

func TestSchemaMismatchBacksUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wattd.db")

	s := openSQLite(t, dir)
	require.NoError(t, s.Set(context.Background(), "@k", "old"))
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO schema_versions (version, applied_at) VALUES (99, datetime('now'))`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s = openSQLite(t, dir)
	defer s.Close()

	_, found, err := s.Get(context.Background(), "@k")
	require.NoError(t, err)
	assert.False(t, found, "schema rebuild starts empty")

	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Contains(t, backups[0].Name(), "wattd_v99_")
}

func TestInvalidConfig(t *testing.T) {
	_, err := store.Open(store.Config{Driver: store.DriverSQLite}, logger.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New().New(store.ErrInvalidDBPath))

	_, err = store.Open(store.Config{Driver: "bolt"}, logger.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New().New(store.ErrInvalidDriver))
}
