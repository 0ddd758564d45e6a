package badger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/storage"
)

// PropertyRepository implements storage.PropertyRepository for BadgerDB.
type PropertyRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.PropertyRepository = (*PropertyRepository)(nil)

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(backend *Backend) *PropertyRepository {
	return &PropertyRepository{
		backend: backend,
		logger:  slog.Default().With("component", "property-repository"),
	}
}

// PutProperty stores or replaces a listing.
func (r *PropertyRepository) PutProperty(ctx context.Context, p *core.Property) error {
	if err := core.ValidateProperty(p); err != nil {
		return err
	}

	doc, err := storage.MarshalProperty(p)
	if err != nil {
		return err
	}
	return r.backend.Set(ctx, makePropertyKey(p.ID), doc)
}

// GetProperty retrieves a listing by ID.
func (r *PropertyRepository) GetProperty(ctx context.Context, id string) (*core.Property, error) {
	doc, err := r.backend.Get(ctx, makePropertyKey(id))
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalProperty(doc)
}

// ListProperties returns all stored listings in key order.
// Corrupt records are logged and skipped so a single bad document never
// poisons a search.
func (r *PropertyRepository) ListProperties(ctx context.Context) ([]*core.Property, error) {
	keys, err := r.backend.ListKeysByPrefix(ctx, propertyPrefix+":")
	if err != nil {
		return nil, fmt.Errorf("listing property keys: %w", err)
	}

	properties := make([]*core.Property, 0, len(keys))
	for _, key := range keys {
		doc, err := r.backend.Get(ctx, key)
		if err != nil {
			if err == storage.ErrNotFound {
				continue // deleted between scan and read
			}
			return nil, err
		}

		p, err := storage.UnmarshalProperty(doc)
		if err != nil {
			r.logger.Warn("skipping undecodable property document", "key", key, "err", err)
			continue
		}
		if err := core.ValidateProperty(p); err != nil {
			r.logger.Warn("skipping corrupt property record", "key", key, "err", err)
			continue
		}
		properties = append(properties, p)
	}

	return properties, nil
}

// DeleteProperty removes a listing and its embedding vector.
func (r *PropertyRepository) DeleteProperty(ctx context.Context, id string) error {
	if err := r.backend.Delete(ctx, makePropertyKey(id)); err != nil {
		return err
	}
	return r.backend.Delete(ctx, makeVectorKey(id))
}
