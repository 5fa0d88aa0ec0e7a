package domain

import (
	"context"
)

// KVStore is the raw persistence behind the catalog cache.
// Get returns ErrCacheMiss when the key is absent.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CatalogClient defines the two fetch contracts of the remote catalog
type CatalogClient interface {
	FetchCatalog(ctx context.Context) (*CatalogResponse, error)
	FetchPriceHistory(ctx context.Context, sku string) ([]PricePoint, error)
}
