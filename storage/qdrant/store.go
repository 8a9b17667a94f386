package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/storage"
	qc "github.com/qdrant/go-client/qdrant"
)

// Payload keys stored on every point.
const (
	FieldFileName = "file_name"
	FieldFilePath = "file_path"
	FieldFileSize = "file_size"
	FieldSummary  = "summary"
)

// pointsClient is the subset of the Qdrant client the store uses.
type pointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qc.CreateCollection) error
	CreateFieldIndex(ctx context.Context, request *qc.CreateFieldIndexCollection) (*qc.UpdateResult, error)
	Count(ctx context.Context, request *qc.CountPoints) (uint64, error)
	Upsert(ctx context.Context, request *qc.UpsertPoints) (*qc.UpdateResult, error)
	Query(ctx context.Context, request *qc.QueryPoints) ([]*qc.ScoredPoint, error)
	Close() error
}

// Store implements storage.IndexStore on a Qdrant collection.
type Store struct {
	client       pointsClient
	collection   string
	searchEffort uint64
	logger       *slog.Logger
}

var _ storage.IndexStore = (*Store)(nil)

// NewStore connects to Qdrant over gRPC. The connection is lazy; the first
// call that reaches the server reports connectivity errors.
func NewStore(opts ...Option) (*Store, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	client, err := qc.NewClient(&qc.Config{
		Host:   o.host,
		Port:   o.port,
		APIKey: o.apiKey,
		UseTLS: o.useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to vector store at %s:%d: %w", o.host, o.port, err)
	}
	return newStore(client, o), nil
}

func newStore(client pointsClient, o *options) *Store {
	return &Store{
		client:       client,
		collection:   o.collection,
		searchEffort: o.searchEffort,
		logger:       o.logger.With("component", "qdrant-store", "collection", o.collection),
	}
}

func applyOptions(opts []Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %s: %w", storage.ErrCollectionCreate, s.collection, err)
	}
	if exists {
		s.logger.Debug("collection exists")
		return nil
	}

	s.logger.Info("creating collection", "dimension", core.DenseDimension)
	err = s.client.CreateCollection(ctx, &qc.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qc.NewVectorsConfigMap(map[string]*qc.VectorParams{
			string(storage.SpaceDense): {
				Size:     uint64(core.DenseDimension),
				Distance: qc.Distance_Cosine,
			},
		}),
		SparseVectorsConfig: qc.NewSparseVectorsConfig(map[string]*qc.SparseVectorParams{
			string(storage.SpaceLexical): {
				Modifier: qc.Modifier_Idf.Enum(),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", storage.ErrCollectionCreate, s.collection, err)
	}

	_, err = s.client.CreateFieldIndex(ctx, &qc.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      FieldFilePath,
		FieldType:      qc.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qc.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: indexing %s: %w", storage.ErrCollectionCreate, FieldFilePath, err)
	}
	return nil
}

func (s *Store) IsIndexed(ctx context.Context, path string) (bool, error) {
	count, err := s.client.Count(ctx, &qc.CountPoints{
		CollectionName: s.collection,
		Filter: &qc.Filter{
			Must: []*qc.Condition{qc.NewMatch(FieldFilePath, path)},
		},
		Exact: qc.PtrOf(true),
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Upsert(ctx context.Context, points ...*core.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}
	structs := make([]*qc.PointStruct, 0, len(points))
	for _, p := range points {
		if err := core.ValidateIndexPoint(p); err != nil {
			return err
		}
		structs = append(structs, toPointStruct(p))
	}

	_, err := s.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qc.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("%w: %d points: %w", storage.ErrUpsertFailed, len(points), err)
	}
	s.logger.Debug("upserted points", "count", len(points))
	return nil
}

func (s *Store) Query(ctx context.Context, q storage.VectorQuery) ([]*core.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	ef := q.SearchEffort
	if ef == 0 {
		ef = s.searchEffort
	}

	request := &qc.QueryPoints{
		CollectionName: s.collection,
		Using:          qc.PtrOf(string(q.Space)),
		Limit:          qc.PtrOf(uint64(q.Limit)),
		WithPayload:    qc.NewWithPayload(true),
		Params: &qc.SearchParams{
			HnswEf: qc.PtrOf(ef),
			Exact:  qc.PtrOf(false),
		},
	}
	if q.Space == storage.SpaceDense {
		request.Query = qc.NewQuery(q.Dense...)
	} else {
		if q.Sparse.Len() == 0 {
			return nil, nil
		}
		request.Query = qc.NewQuerySparse(q.Sparse.Indices, q.Sparse.Values)
	}

	scored, err := s.client.Query(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("querying %s space: %w", q.Space, err)
	}

	results := make([]*core.SearchResult, 0, len(scored))
	for _, sp := range scored {
		results = append(results, fromScoredPoint(sp))
	}
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func toPointStruct(p *core.IndexPoint) *qc.PointStruct {
	vectors := map[string]*qc.Vector{
		string(storage.SpaceDense): qc.NewVector(p.Dense...),
	}
	if p.Sparse.Len() > 0 {
		vectors[string(storage.SpaceLexical)] = qc.NewVectorSparse(p.Sparse.Indices, p.Sparse.Values)
	}
	return &qc.PointStruct{
		Id:      qc.NewID(p.ID),
		Vectors: qc.NewVectorsMap(vectors),
		Payload: map[string]*qc.Value{
			FieldFileName: qc.NewValueString(p.Payload.FileName),
			FieldFilePath: qc.NewValueString(p.Payload.FilePath),
			FieldFileSize: qc.NewValueInt(p.Payload.FileSize),
			FieldSummary:  qc.NewValueString(p.Payload.Summary),
		},
	}
}

func fromScoredPoint(sp *qc.ScoredPoint) *core.SearchResult {
	payload := sp.GetPayload()
	return &core.SearchResult{
		ID:    sp.GetId().GetUuid(),
		Score: sp.GetScore(),
		Payload: core.Payload{
			FileName: payload[FieldFileName].GetStringValue(),
			FilePath: payload[FieldFilePath].GetStringValue(),
			FileSize: payload[FieldFileSize].GetIntegerValue(),
			Summary:  payload[FieldSummary].GetStringValue(),
		},
	}
}
