package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/boozescore/backend/internal/domain"
)

// LoadStatus tells where a loaded product collection came from
type LoadStatus string

const (
	// LoadCached means the collection came from a fresh cache entry
	LoadCached LoadStatus = "cached"
	// LoadFetched means the collection was fetched and cached
	LoadFetched LoadStatus = "fetched"
	// LoadDegraded means the fetch failed and the collection is the last
	// known cache entry, possibly stale or empty
	LoadDegraded LoadStatus = "degraded"
)

// LoadResult is the authoritative product collection for one refresh
type LoadResult struct {
	Products []domain.Product
	Status   LoadStatus
	MaxScore float64
	Err      error // fetch error when Status is LoadDegraded
}

// ProductRepositoryConfig holds configuration for the product repository
type ProductRepositoryConfig struct {
	CacheKey string
	Logger   *zap.Logger
	Recorder Recorder
}

// ProductRepository produces the product collection from the cache or,
// on a miss, from the remote catalog.
type ProductRepository struct {
	cache    *CacheStore
	client   domain.CatalogClient
	cacheKey string
	logger   *zap.Logger
	recorder Recorder
	group    singleflight.Group
}

// NewProductRepository creates a new product repository with dependencies
func NewProductRepository(
	cache *CacheStore,
	client domain.CatalogClient,
	config ProductRepositoryConfig,
) *ProductRepository {
	cacheKey := config.CacheKey
	if cacheKey == "" {
		cacheKey = DefaultCacheKey
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := config.Recorder
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &ProductRepository{
		cache:    cache,
		client:   client,
		cacheKey: cacheKey,
		logger:   logger,
		recorder: recorder,
	}
}

// Load returns the product collection. It never fails: when the remote
// fetch fails the error is logged and reported through Status and Err, and
// the result carries whatever the cache last held.
// Flow: check cache -> fetch catalog -> store -> return
func (r *ProductRepository) Load(ctx context.Context) *LoadResult {
	if entry, ok := r.cache.Get(ctx, r.cacheKey); ok {
		r.logger.Debug("catalog served from cache", zap.Int("products", len(entry.Products)))
		return newLoadResult(entry.Products, LoadCached, nil)
	}

	// Concurrent misses share one in-flight fetch. It runs detached from the
	// caller so one cancelled request cannot fail the others waiting on it.
	fetchCtx := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do(r.cacheKey, func() (interface{}, error) {
		return r.refresh(fetchCtx), nil
	})
	return v.(*LoadResult)
}

// Invalidate drops the cached catalog and loads a fresh one. When the fetch
// fails the previous entry is written back so readers keep the last known
// catalog.
func (r *ProductRepository) Invalidate(ctx context.Context) *LoadResult {
	previous, hadPrevious := r.cache.Last(ctx, r.cacheKey)
	if err := r.cache.Delete(ctx, r.cacheKey); err != nil {
		r.logger.Warn("catalog cache delete failed", zap.Error(err))
	}

	result := r.Load(ctx)
	if result.Status != LoadDegraded || !hadPrevious {
		return result
	}

	if err := r.cache.Put(ctx, r.cacheKey, previous); err != nil {
		r.logger.Warn("catalog cache restore failed", zap.Error(err))
	}
	return newLoadResult(previous.Products, LoadDegraded, result.Err)
}

func (r *ProductRepository) refresh(ctx context.Context) *LoadResult {
	resp, err := r.client.FetchCatalog(ctx)
	if err == nil && resp == nil {
		err = fmt.Errorf("%w: empty response", domain.ErrCatalogAPIFailure)
	}
	if err != nil {
		r.recorder.CatalogFetchFailed()
		r.logger.Error("catalog fetch failed", zap.Error(err))

		var products []domain.Product
		if last, ok := r.cache.Last(ctx, r.cacheKey); ok {
			products = last.Products
			r.logger.Warn("serving last cached catalog",
				zap.Int("products", len(products)),
				zap.Time("cached_at", last.Timestamp.Time()),
			)
		}
		return newLoadResult(products, LoadDegraded, err)
	}

	r.recorder.CatalogFetched(len(resp.Products))
	if err := r.cache.Put(ctx, r.cacheKey, r.cache.Stamp(resp.Products)); err != nil {
		// Log but don't fail if caching fails
		r.logger.Warn("catalog cache write failed", zap.Error(err))
	}
	r.logger.Info("catalog fetched", zap.Int("products", len(resp.Products)))

	return newLoadResult(resp.Products, LoadFetched, nil)
}

func newLoadResult(products []domain.Product, status LoadStatus, err error) *LoadResult {
	return &LoadResult{
		Products: products,
		Status:   status,
		MaxScore: maxScore(products),
		Err:      err,
	}
}

func maxScore(products []domain.Product) float64 {
	var best float64
	for i := range products {
		if i == 0 || products[i].CombinedScore > best {
			best = products[i].CombinedScore
		}
	}
	return best
}
