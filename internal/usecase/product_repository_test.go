package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boozescore/backend/internal/domain"
)

type repoFixture struct {
	kv       *MockKVStore
	client   *MockCatalogClient
	clock    *fakeClock
	recorder *countingRecorder
	store    *CacheStore
	repo     *ProductRepository
}

func newRepoFixture(client *MockCatalogClient) *repoFixture {
	f := &repoFixture{
		kv:       NewMockKVStore(),
		client:   client,
		clock:    newFakeClock(),
		recorder: &countingRecorder{},
	}
	f.store = NewCacheStore(f.kv, CacheStoreConfig{Now: f.clock.Now, Recorder: f.recorder})
	f.repo = NewProductRepository(f.store, client, ProductRepositoryConfig{Recorder: f.recorder})
	return f
}

func TestProductRepository_Load(t *testing.T) {
	ctx := context.Background()
	catalog := []domain.Product{
		newProduct("1", "Gin", withScore(1200)),
		newProduct("2", "Rum", withScore(1800)),
	}

	t.Run("fetches and caches on miss", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(catalog...))

		result := f.repo.Load(ctx)

		assert.Equal(t, LoadFetched, result.Status)
		assert.NoError(t, result.Err)
		assert.Equal(t, []string{"1", "2"}, productSKUs(result.Products))
		assert.Equal(t, 1800.0, result.MaxScore)
		assert.Equal(t, 1, f.kv.sets)
		assert.Equal(t, 1, f.recorder.fetched)
	})

	t.Run("serves fresh cache without fetching", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(catalog...))
		f.repo.Load(ctx)

		f.clock.Advance(10 * time.Minute)
		result := f.repo.Load(ctx)

		assert.Equal(t, LoadCached, result.Status)
		assert.Len(t, result.Products, 2)
		assert.Equal(t, 1, f.client.Calls())
	})

	t.Run("refetches after TTL", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(catalog...))
		f.repo.Load(ctx)

		f.clock.Advance(31 * time.Minute)
		result := f.repo.Load(ctx)

		assert.Equal(t, LoadFetched, result.Status)
		assert.Equal(t, 2, f.client.Calls())
	})

	t.Run("falls back to stale cache when fetch fails", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(catalog...))
		f.repo.Load(ctx)

		f.clock.Advance(2 * time.Hour)
		f.client.catalogError = domain.ErrCatalogAPIFailure
		result := f.repo.Load(ctx)

		assert.Equal(t, LoadDegraded, result.Status)
		assert.ErrorIs(t, result.Err, domain.ErrCatalogAPIFailure)
		assert.Len(t, result.Products, 2)
		assert.Equal(t, 1, f.recorder.failures)
	})

	t.Run("returns empty collection when fetch fails with no cache", func(t *testing.T) {
		client := NewMockCatalogClient()
		client.catalogError = errors.New("connection refused")
		f := newRepoFixture(client)

		result := f.repo.Load(ctx)

		assert.Equal(t, LoadDegraded, result.Status)
		assert.Error(t, result.Err)
		assert.Empty(t, result.Products)
		assert.Zero(t, result.MaxScore)
	})

	t.Run("treats corrupt cache as miss", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(catalog...))
		f.kv.data[DefaultCacheKey] = []byte("garbage")

		result := f.repo.Load(ctx)

		assert.Equal(t, LoadFetched, result.Status)
		assert.Len(t, result.Products, 2)
	})

	t.Run("nil response is a failure", func(t *testing.T) {
		client := NewMockCatalogClient()
		client.response = nil
		f := newRepoFixture(client)

		result := f.repo.Load(ctx)

		assert.Equal(t, LoadDegraded, result.Status)
		assert.ErrorIs(t, result.Err, domain.ErrCatalogAPIFailure)
	})

	t.Run("cache write failure still returns fetched products", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(catalog...))
		f.kv.setError = errors.New("quota exceeded")

		result := f.repo.Load(ctx)

		assert.Equal(t, LoadFetched, result.Status)
		assert.Len(t, result.Products, 2)
	})

	t.Run("empty fetch is cached but never served as hit", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient())

		first := f.repo.Load(ctx)
		second := f.repo.Load(ctx)

		assert.Equal(t, LoadFetched, first.Status)
		assert.Equal(t, LoadFetched, second.Status)
		assert.Equal(t, 2, f.client.Calls())
	})
}

func TestProductRepository_ConcurrentMissesShareFetch(t *testing.T) {
	ctx := context.Background()
	client := NewMockCatalogClient(newProduct("1", "Gin"))
	client.block = make(chan struct{})
	f := newRepoFixture(client)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*LoadResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.repo.Load(ctx)
		}(i)
	}

	require.Eventually(t, func() bool { return client.Calls() == 1 }, time.Second, time.Millisecond)
	// let the remaining callers join the in-flight fetch
	time.Sleep(20 * time.Millisecond)
	close(client.block)
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Len(t, r.Products, 1)
	}
	assert.Equal(t, 1, client.Calls())
}

func TestProductRepository_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	client := NewMockCatalogClient(newProduct("1", "Gin"), newProduct("2", "Rum"))
	client.block = make(chan struct{})
	f := newRepoFixture(client)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leader := make(chan *LoadResult, 1)
	go func() { leader <- f.repo.Load(leaderCtx) }()
	require.Eventually(t, func() bool { return client.Calls() == 1 }, time.Second, time.Millisecond)

	follower := make(chan *LoadResult, 1)
	go func() { follower <- f.repo.Load(context.Background()) }()
	// let the second caller join the in-flight fetch
	time.Sleep(20 * time.Millisecond)

	cancelLeader()
	time.Sleep(10 * time.Millisecond)
	close(client.block)

	result := <-follower
	assert.Equal(t, LoadFetched, result.Status)
	assert.NoError(t, result.Err)
	assert.Equal(t, []string{"1", "2"}, productSKUs(result.Products))
	assert.Equal(t, LoadFetched, (<-leader).Status)
	assert.Equal(t, 1, client.Calls())

	_, cached := f.store.Get(context.Background(), DefaultCacheKey)
	assert.True(t, cached)
}

func TestProductRepository_Invalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("refetches even when cache is fresh", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(newProduct("1", "Gin")))
		f.repo.Load(ctx)

		f.client.response = &domain.CatalogResponse{Products: []domain.Product{newProduct("2", "Rum")}}
		result := f.repo.Invalidate(ctx)

		assert.Equal(t, LoadFetched, result.Status)
		assert.Equal(t, []string{"2"}, productSKUs(result.Products))
		assert.Equal(t, 2, f.client.Calls())
		assert.Equal(t, 1, f.kv.deletes)

		cached := f.repo.Load(ctx)
		assert.Equal(t, LoadCached, cached.Status)
		assert.Equal(t, []string{"2"}, productSKUs(cached.Products))
	})

	t.Run("restores previous entry when fetch fails", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(newProduct("1", "Gin")))
		f.repo.Load(ctx)

		f.client.fail(domain.ErrCatalogAPIFailure)
		result := f.repo.Invalidate(ctx)

		assert.Equal(t, LoadDegraded, result.Status)
		assert.ErrorIs(t, result.Err, domain.ErrCatalogAPIFailure)
		assert.Equal(t, []string{"1"}, productSKUs(result.Products))

		last, ok := f.store.Last(ctx, DefaultCacheKey)
		require.True(t, ok)
		assert.Equal(t, []string{"1"}, productSKUs(last.Products))
	})

	t.Run("degraded and empty without previous entry", func(t *testing.T) {
		client := NewMockCatalogClient()
		client.fail(errors.New("connection refused"))
		f := newRepoFixture(client)

		result := f.repo.Invalidate(ctx)

		assert.Equal(t, LoadDegraded, result.Status)
		assert.Empty(t, result.Products)
	})

	t.Run("delete failure still reloads", func(t *testing.T) {
		f := newRepoFixture(NewMockCatalogClient(newProduct("1", "Gin")))
		f.kv.deleteError = errors.New("read-only")

		result := f.repo.Invalidate(ctx)

		assert.Equal(t, LoadFetched, result.Status)
		assert.Equal(t, 1, f.client.Calls())
	})
}
