package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "nested", "quotes.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStore_GetAbsent(t *testing.T) {
	s := openTemp(t)

	v, found, err := s.Get(context.Background(), "quotes")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestStore_SetGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "selected_category", []byte("Design")))
	require.NoError(t, s.Set(ctx, "selected_category", []byte("Motivation")))

	v, found, err := s.Get(ctx, "selected_category")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Motivation", string(v))
}

func TestStore_EmptyValueIsFound(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", nil))

	v, found, err := s.Get(ctx, "k")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, v)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "quotes", []byte(`[{"text":"a","category":"b"}]`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	v, found, err := reopened.Get(ctx, "quotes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"text":"a","category":"b"}]`, string(v))
	assert.Equal(t, path, reopened.Path())
}

func TestStore_CancelledContext(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Set(ctx, "k", []byte("v")), context.Canceled)
	require.ErrorIs(t, s.Check(ctx), context.Canceled)
}

func TestStore_Check(t *testing.T) {
	s := openTemp(t)

	assert.Equal(t, "storage", s.Name())
	assert.NoError(t, s.Check(context.Background()))
}

func TestStore_ClosedDatabaseFails(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "quotes.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.Error(t, s.Set(context.Background(), "k", []byte("v")))
	require.Error(t, s.Check(context.Background()))
}
