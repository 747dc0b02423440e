package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/dknn/engine"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := engine.Open(filepath.Join(t.TempDir(), "store.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)
	return s
}

func TestSQLiteStore_PutActivationsRemove(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.Put(ctx, []Example{
		{ID: "a", Label: 1, Activations: map[string][]float32{"conv": {1, 2, 3}, "fc": {0.5, 0.5}}},
		{ID: "b", Label: 0, Activations: map[string][]float32{"conv": {4, 5, 6}, "fc": {1, 0}}},
		{ID: "c", Label: Unlabeled, Activations: map[string][]float32{"conv": {7, 8, 9}, "fc": {0, 1}}},
	}))

	ids, err := s.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	labels, err := s.Labels(ctx, []string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []int{Unlabeled, 1}, labels)

	acts, err := s.Activations(ctx, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{4, 5, 6}, {1, 2, 3}}, acts["conv"])
	assert.Equal(t, [][]float32{{1, 0}, {0.5, 0.5}}, acts["fc"])

	// upsert relabels and replaces activations
	require.NoError(t, s.Put(ctx, []Example{
		{ID: "a", Label: 0, Activations: map[string][]float32{"conv": {9, 9, 9}, "fc": {1, 1}}},
	}))
	labels, err = s.Labels(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, labels)
	acts, err = s.Activations(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{9, 9, 9}}, acts["conv"])

	require.NoError(t, s.Remove(ctx, "b"))
	ids, err = s.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)
	_, err = s.Labels(ctx, []string{"b"})
	assert.Error(t, err)
	_, err = s.Activations(ctx, []string{"b"})
	assert.Error(t, err)
}

func TestSQLiteStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	assert.Error(t, s.Put(ctx, []Example{{Label: 1, Activations: map[string][]float32{"fc": {1}}}}))
	assert.Error(t, s.Put(ctx, []Example{{ID: "x", Label: 1}}))
	assert.Error(t, s.Put(ctx, []Example{{ID: "x", Label: 1, Activations: map[string][]float32{"fc": {}}}}))
	assert.Error(t, s.Remove(ctx, ""))

	// a failed batch leaves nothing behind
	ids, err := s.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.Put(ctx, []Example{
		{ID: "a", Label: 1, Activations: map[string][]float32{"fc": {1, 2}}},
		{ID: "b", Label: 1, Activations: map[string][]float32{"fc": {1, 2, 3}}},
		{ID: "c", Label: 1, Activations: map[string][]float32{"conv": {1, 2}}},
		{ID: "d", Label: 1, Activations: map[string][]float32{"fc": {1, 2}, "conv": {3}}},
	}))
	_, err = s.Activations(ctx, []string{"a", "b"})
	assert.ErrorContains(t, err, "dim")
	_, err = s.Activations(ctx, []string{"a", "c"})
	assert.ErrorContains(t, err, "unexpected layer")
	_, err = s.Activations(ctx, []string{"a", "d"})
	assert.ErrorContains(t, err, "layers")

	_, err = NewSQLiteStore(ctx, nil)
	assert.Error(t, err)
}
