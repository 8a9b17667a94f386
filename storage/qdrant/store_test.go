package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/storage"
	qc "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records requests and returns scripted responses.
type fakeClient struct {
	exists      bool
	existsErr   error
	created     []*qc.CreateCollection
	fieldIndex  []*qc.CreateFieldIndexCollection
	count       uint64
	countReq    *qc.CountPoints
	upserts     []*qc.UpsertPoints
	upsertErr   error
	queryReq    *qc.QueryPoints
	queryResult []*qc.ScoredPoint
	closed      bool
}

func (f *fakeClient) CollectionExists(ctx context.Context, name string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeClient) CreateCollection(ctx context.Context, req *qc.CreateCollection) error {
	f.created = append(f.created, req)
	f.exists = true
	return nil
}

func (f *fakeClient) CreateFieldIndex(ctx context.Context, req *qc.CreateFieldIndexCollection) (*qc.UpdateResult, error) {
	f.fieldIndex = append(f.fieldIndex, req)
	return &qc.UpdateResult{}, nil
}

func (f *fakeClient) Count(ctx context.Context, req *qc.CountPoints) (uint64, error) {
	f.countReq = req
	return f.count, nil
}

func (f *fakeClient) Upsert(ctx context.Context, req *qc.UpsertPoints) (*qc.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qc.UpdateResult{}, f.upsertErr
}

func (f *fakeClient) Query(ctx context.Context, req *qc.QueryPoints) ([]*qc.ScoredPoint, error) {
	f.queryReq = req
	return f.queryResult, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func newTestStore(t *testing.T, client *fakeClient) *Store {
	t.Helper()
	o, err := applyOptions([]Option{WithCollection("test_files")})
	require.NoError(t, err)
	return newStore(client, o)
}

func testPoint(path string) *core.IndexPoint {
	dense := make([]float32, core.DenseDimension)
	dense[0] = 1
	file := &core.FileRecord{Name: "report.md", Path: path, Size: 42, Summary: "A report."}
	return core.NewIndexPoint(file, dense, core.SparseVector{Indices: []uint32{7}, Values: []float32{1}})
}

func TestEnsureCollection_CreatesOnce(t *testing.T) {
	client := &fakeClient{}
	store := newTestStore(t, client)
	ctx := context.Background()

	require.NoError(t, store.EnsureCollection(ctx))
	require.NoError(t, store.EnsureCollection(ctx))

	require.Len(t, client.created, 1)
	req := client.created[0]
	assert.Equal(t, "test_files", req.CollectionName)

	params := req.GetVectorsConfig().GetParamsMap().GetMap()
	require.Contains(t, params, "dense")
	assert.Equal(t, uint64(core.DenseDimension), params["dense"].GetSize())
	assert.Equal(t, qc.Distance_Cosine, params["dense"].GetDistance())

	sparse := req.GetSparseVectorsConfig().GetMap()
	require.Contains(t, sparse, "lexical")
	assert.Equal(t, qc.Modifier_Idf, sparse["lexical"].GetModifier())

	require.Len(t, client.fieldIndex, 1)
	assert.Equal(t, FieldFilePath, client.fieldIndex[0].FieldName)
}

func TestEnsureCollection_Unreachable(t *testing.T) {
	store := newTestStore(t, &fakeClient{existsErr: errors.New("connection refused")})
	err := store.EnsureCollection(context.Background())
	assert.ErrorIs(t, err, storage.ErrCollectionCreate)
}

func TestIsIndexed(t *testing.T) {
	client := &fakeClient{count: 1}
	store := newTestStore(t, client)

	indexed, err := store.IsIndexed(context.Background(), "/docs/report.md")
	require.NoError(t, err)
	assert.True(t, indexed)
	assert.True(t, client.countReq.GetExact())

	cond := client.countReq.GetFilter().GetMust()[0].GetField()
	assert.Equal(t, FieldFilePath, cond.GetKey())
	assert.Equal(t, "/docs/report.md", cond.GetMatch().GetKeyword())

	client.count = 0
	indexed, err = store.IsIndexed(context.Background(), "/docs/other.md")
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestUpsert(t *testing.T) {
	client := &fakeClient{}
	store := newTestStore(t, client)
	ctx := context.Background()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, store.Upsert(ctx))
		assert.Empty(t, client.upserts)
	})

	t.Run("one call per batch", func(t *testing.T) {
		require.NoError(t, store.Upsert(ctx, testPoint("/a.md"), testPoint("/b.md")))
		require.Len(t, client.upserts, 1)

		req := client.upserts[0]
		assert.True(t, req.GetWait())
		require.Len(t, req.Points, 2)

		p := req.Points[0]
		assert.Equal(t, core.PointIDFromPath("/a.md"), p.GetId().GetUuid())
		assert.Equal(t, "/a.md", p.GetPayload()[FieldFilePath].GetStringValue())
		assert.Equal(t, int64(42), p.GetPayload()[FieldFileSize].GetIntegerValue())
		vectors := p.GetVectors().GetVectors().GetVectors()
		assert.Contains(t, vectors, "dense")
		assert.Contains(t, vectors, "lexical")
	})

	t.Run("invalid point rejects whole batch", func(t *testing.T) {
		before := len(client.upserts)
		bad := testPoint("/c.md")
		bad.Dense = bad.Dense[:10]

		err := store.Upsert(ctx, testPoint("/d.md"), bad)
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
		assert.Len(t, client.upserts, before)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		client.upsertErr = errors.New("unavailable")
		defer func() { client.upsertErr = nil }()
		err := store.Upsert(ctx, testPoint("/e.md"))
		assert.ErrorIs(t, err, storage.ErrUpsertFailed)
	})
}

func TestQuery(t *testing.T) {
	id := core.PointIDFromPath("/docs/report.md")
	client := &fakeClient{
		queryResult: []*qc.ScoredPoint{
			{Id: qc.NewID(core.PointIDFromPath("/low.md")), Score: 0.2},
			{
				Id:    qc.NewID(id),
				Score: 0.9,
				Payload: map[string]*qc.Value{
					FieldFileName: qc.NewValueString("report.md"),
					FieldFilePath: qc.NewValueString("/docs/report.md"),
					FieldFileSize: qc.NewValueInt(42),
					FieldSummary:  qc.NewValueString("A report."),
				},
			},
		},
	}
	store := newTestStore(t, client)

	dense := make([]float32, core.DenseDimension)
	results, err := store.Query(context.Background(), storage.VectorQuery{Space: storage.SpaceDense, Dense: dense, Limit: 5})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, id, results[0].ID)
	assert.Equal(t, "report.md", results[0].Payload.FileName)
	assert.Equal(t, int64(42), results[0].Payload.FileSize)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	assert.Equal(t, "dense", client.queryReq.GetUsing())
	assert.Equal(t, uint64(5), client.queryReq.GetLimit())
	assert.Equal(t, uint64(defaultSearchEffort), client.queryReq.GetParams().GetHnswEf())
	assert.False(t, client.queryReq.GetParams().GetExact())
}

func TestQuery_Invalid(t *testing.T) {
	store := newTestStore(t, &fakeClient{})
	_, err := store.Query(context.Background(), storage.VectorQuery{Space: storage.SpaceDense, Dense: []float32{1}, Limit: 5})
	assert.Error(t, err)
}

func TestWithURL(t *testing.T) {
	tests := []struct {
		raw     string
		host    string
		port    int
		tls     bool
		wantErr bool
	}{
		{"http://localhost:6334", "localhost", 6334, false, false},
		{"https://qdrant.example.com:6334", "qdrant.example.com", 6334, true, false},
		{"db.internal:7000", "db.internal", 7000, false, false},
		{"http://vectors", "vectors", defaultPort, false, false},
		{"http://:6334", "", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			o, err := applyOptions([]Option{WithURL(tt.raw)})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, o.host)
			assert.Equal(t, tt.port, o.port)
			assert.Equal(t, tt.tls, o.useTLS)
		})
	}
}

func TestClose(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, newTestStore(t, client).Close())
	assert.True(t, client.closed)
}
