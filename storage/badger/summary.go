package badger

import (
	"context"
	"time"

	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/storage"
)

// SummaryRepository implements storage.SummaryRepository for BadgerDB.
type SummaryRepository struct {
	backend *Backend
	owned   bool
}

var _ storage.SummaryRepository = (*SummaryRepository)(nil)

// NewSummaryRepository creates a repository over an open backend.
// The caller remains responsible for closing the backend.
func NewSummaryRepository(backend *Backend) *SummaryRepository {
	return &SummaryRepository{
		backend: backend,
	}
}

// OpenSummaryRepository opens (creating if needed) the cache directory at path.
// Closing the repository closes the underlying database.
func OpenSummaryRepository(path string) (storage.SummaryRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &SummaryRepository{backend: backend, owned: true}, nil
}

// Close releases the backend if this repository opened it.
func (r *SummaryRepository) Close() error {
	if r.owned && !r.backend.IsClosed() {
		return r.backend.Close()
	}
	return nil
}

func (r *SummaryRepository) GetSummary(ctx context.Context, path string) (*core.SummaryEntry, error) {
	return get(r.backend, makeSummaryKey(path), storage.UnmarshalSummaryEntry)
}

func (r *SummaryRepository) PutSummary(ctx context.Context, entry *core.SummaryEntry) error {
	if entry.Path == "" {
		return core.ErrEmptyPath
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.backend.logger.Debug("caching summary", "path", entry.Path, "model", entry.Model)
	return r.backend.set(makeSummaryKey(entry.Path), storage.MarshalSummaryEntry(entry))
}

func (r *SummaryRepository) GetMeta(ctx context.Context, key string) (string, error) {
	return get(r.backend, makeMetaKey(key), storage.UnmarshalMeta)
}

func (r *SummaryRepository) SetMeta(ctx context.Context, key, value string) error {
	return r.backend.set(makeMetaKey(key), storage.MarshalMeta(value))
}
