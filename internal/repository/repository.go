package repository

import (
	"context"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
)

// CatalogRepository is read-only access to the product catalog.
type CatalogRepository interface {
	// List returns every product in declaration order.
	List() []domain.Product

	// Get returns the product with the given ID.
	Get(id string) (domain.Product, bool)
}

// SlotStore is a durable key-value slot holding one opaque blob per key.
type SlotStore interface {
	// Get returns the stored value, or an error wrapping apperrors.ErrNotFound
	// when the key has never been written or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying connection or file handles.
	Close() error
}

// Pinger is implemented by slot stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
