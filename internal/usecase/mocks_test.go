package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/boozescore/backend/internal/domain"
)

// MockKVStore is an in-memory domain.KVStore with injectable failures
type MockKVStore struct {
	mu          sync.Mutex
	data        map[string][]byte
	getError    error
	setError    error
	deleteError error
	sets        int
	deletes     int
}

func NewMockKVStore() *MockKVStore {
	return &MockKVStore{data: make(map[string][]byte)}
}

func (m *MockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	value, ok := m.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

func (m *MockKVStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.data, key)
	return nil
}

// MockCatalogClient is a domain.CatalogClient returning canned responses
type MockCatalogClient struct {
	mu           sync.Mutex
	response     *domain.CatalogResponse
	catalogError error
	history      map[string][]domain.PricePoint
	historyError error
	calls        int
	block        chan struct{} // when set, FetchCatalog waits for it to close or ctx to end
}

func NewMockCatalogClient(products ...domain.Product) *MockCatalogClient {
	return &MockCatalogClient{response: &domain.CatalogResponse{Products: products}}
}

func (m *MockCatalogClient) FetchCatalog(ctx context.Context) (*domain.CatalogResponse, error) {
	m.mu.Lock()
	m.calls++
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.catalogError != nil {
		return nil, m.catalogError
	}
	return m.response, nil
}

func (m *MockCatalogClient) FetchPriceHistory(ctx context.Context, sku string) ([]domain.PricePoint, error) {
	if m.historyError != nil {
		return nil, m.historyError
	}
	return m.history[sku], nil
}

// fail makes subsequent catalog fetches return err
func (m *MockCatalogClient) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogError = err
}

func (m *MockCatalogClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// countingRecorder tallies Recorder events
type countingRecorder struct {
	mu       sync.Mutex
	hits     int
	misses   int
	fetched  int
	failures int
}

func (r *countingRecorder) CacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *countingRecorder) CacheMiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *countingRecorder) CatalogFetched(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetched++
}

func (r *countingRecorder) CatalogFetchFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// productOption customizes a test product
type productOption func(*domain.Product)

func withPrice(price, sale float64) productOption {
	return func(p *domain.Product) { p.Price = &domain.Price{Price: price, SalePrice: sale} }
}

func withoutPrice() productOption {
	return func(p *domain.Product) { p.Price = nil }
}

func withScore(score float64) productOption {
	return func(p *domain.Product) { p.CombinedScore = score }
}

func withCategories(nodes ...domain.CategoryNode) productOption {
	return func(p *domain.Product) {
		p.FullCategory = nodes
		if len(nodes) > 0 {
			p.Category = nodes[0].Description
		}
	}
}

func withCountry(name, code string) productOption {
	return func(p *domain.Product) { p.Country = domain.Country{Name: name, Code: code} }
}

func withUPC(upc string) productOption {
	return func(p *domain.Product) { p.UPC = upc }
}

func withUnits(units int) productOption {
	return func(p *domain.Product) { p.UnitSize = units }
}

func withNew() productOption {
	return func(p *domain.Product) { p.IsNew = true }
}

func newProduct(sku, name string, opts ...productOption) domain.Product {
	p := domain.Product{
		SKU:           sku,
		Name:          name,
		UPC:           "0012345678905",
		Price:         &domain.Price{Price: 30, SalePrice: 30},
		Category:      "Spirits",
		FullCategory:  []domain.CategoryNode{{ID: 1, Description: "Spirits"}},
		Country:       domain.Country{Name: "Canada", Code: "CA"},
		Alcohol:       40,
		Volume:        0.75,
		UnitSize:      1,
		CombinedScore: 1500,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func skus(items []domain.DecoratedProduct) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].SKU
	}
	return out
}

func productSKUs(products []domain.Product) []string {
	out := make([]string, len(products))
	for i := range products {
		out[i] = products[i].SKU
	}
	return out
}
