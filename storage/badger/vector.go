package badger

import (
	"context"

	"github.com/crestline/leasebot/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
// Vectors are stored under their own key prefix in MUS binary encoding.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) *VectorRepository {
	return &VectorRepository{backend: backend}
}

// PutVector stores the embedding vector for a listing.
func (r *VectorRepository) PutVector(ctx context.Context, propertyID string, vector []float32) error {
	return r.backend.Set(ctx, makeVectorKey(propertyID), storage.MarshalVector(vector))
}

// GetVector retrieves the embedding vector for a listing.
func (r *VectorRepository) GetVector(ctx context.Context, propertyID string) ([]float32, error) {
	doc, err := r.backend.Get(ctx, makeVectorKey(propertyID))
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalVector(doc)
}

// ListVectorIDs returns the IDs of all listings with stored vectors.
func (r *VectorRepository) ListVectorIDs(ctx context.Context) ([]string, error) {
	keys, err := r.backend.ListKeysByPrefix(ctx, vectorPrefix+":")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, trimKeyPrefix(key, vectorPrefix))
	}
	return ids, nil
}
