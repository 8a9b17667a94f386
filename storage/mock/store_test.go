package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(path string, axis int, sparse ...uint32) *core.IndexPoint {
	dense := make([]float32, core.DenseDimension)
	dense[axis] = 1
	sv := core.SparseVector{Indices: sparse, Values: make([]float32, len(sparse))}
	for i := range sv.Values {
		sv.Values[i] = 1
	}
	return core.NewIndexPoint(&core.FileRecord{Name: path, Path: path}, dense, sv)
}

func TestIndexStore_UpsertReplacesByID(t *testing.T) {
	s := NewIndexStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, point("/a", 0)))
	require.NoError(t, s.Upsert(ctx, point("/a", 1)))
	require.NoError(t, s.Upsert(ctx))

	assert.Len(t, s.Points(), 1)
	assert.Equal(t, 2, s.UpsertCalls())

	indexed, err := s.IsIndexed(ctx, "/a")
	require.NoError(t, err)
	assert.True(t, indexed)
}

func TestIndexStore_RejectsInvalidBatch(t *testing.T) {
	s := NewIndexStore()
	bad := point("/b", 0)
	bad.Dense = nil

	err := s.Upsert(context.Background(), point("/a", 0), bad)
	assert.ErrorIs(t, err, core.ErrInvalidIndexPoint)
	assert.Empty(t, s.Points())
}

func TestIndexStore_QueryOrderAndLimit(t *testing.T) {
	s := NewIndexStore()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, point("/x", 0, 1, 2), point("/y", 1, 2), point("/z", 2)))

	q := make([]float32, core.DenseDimension)
	q[0] = 1
	q[1] = 0.5
	results, err := s.Query(ctx, storage.VectorQuery{Space: storage.SpaceDense, Dense: q, Limit: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "/x", results[0].Payload.FilePath)
	assert.Equal(t, "/y", results[1].Payload.FilePath)

	sparse := core.SparseVector{Indices: []uint32{1}, Values: []float32{1}}
	results, err = s.Query(ctx, storage.VectorQuery{Space: storage.SpaceLexical, Sparse: sparse, Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "/x", results[0].Payload.FilePath)
}

func TestIndexStore_InjectedErrors(t *testing.T) {
	s := NewIndexStore()
	s.IsIndexedErr = errors.New("timeout")

	_, err := s.IsIndexed(context.Background(), "/a")
	assert.Error(t, err)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.EnsureCollection(context.Background()), storage.ErrStorageClosed)
}
