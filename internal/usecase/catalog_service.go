package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/boozescore/backend/internal/domain"
)

// DefaultTopN caps the items kept per group
const DefaultTopN = 10000

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	NoiseFloor  float64
	TopN        int
	DefaultSort domain.SortSpec
	Logger      *zap.Logger
}

// ViewRequest describes one filter/sort state
type ViewRequest struct {
	Filter  domain.FilterSpec
	Sort    domain.SortSpec // leading keys; the default sort is appended as tie-breaker
	GroupBy domain.GroupField
	TopN    int
}

// View is a display-ready grouped ranking of the catalog
type View struct {
	Groups   []domain.GroupedResult `json:"groups"`
	Filter   domain.FilterSpec      `json:"filter"`
	Sort     []string               `json:"sort"`
	Status   LoadStatus             `json:"status"`
	Error    string                 `json:"error,omitempty"`
	Total    int                    `json:"total"`
	Matched  int                    `json:"matched"`
	Rejected int                    `json:"rejected"` // matched products dropped for a malformed UPC
	MaxScore float64                `json:"max_score"`
}

// CatalogService composes loading, filtering and grouping per request
type CatalogService struct {
	repo        *ProductRepository
	client      domain.CatalogClient
	filter      *FilterEngine
	topN        int
	defaultSort domain.SortSpec
	logger      *zap.Logger
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(
	repo *ProductRepository,
	client domain.CatalogClient,
	config CatalogServiceConfig,
) *CatalogService {
	topN := config.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	defaultSort := config.DefaultSort
	if len(defaultSort) == 0 {
		defaultSort = domain.MustParseSortSpec("-" + string(domain.SortCombinedScore))
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CatalogService{
		repo:        repo,
		client:      client,
		filter:      NewFilterEngine(config.NoiseFloor),
		topN:        topN,
		defaultSort: defaultSort,
		logger:      logger,
	}
}

// View loads the catalog and produces the grouped ranking for req
func (s *CatalogService) View(ctx context.Context, req ViewRequest) *View {
	loaded := s.repo.Load(ctx)

	topN := req.TopN
	if topN <= 0 {
		topN = s.topN
	}
	groupBy := req.GroupBy
	if groupBy == "" {
		groupBy = domain.GroupCategory
	}
	sortSpec := s.resolveSort(req.Sort)

	filtered := s.filter.Apply(loaded.Products, req.Filter)
	groups, invalidUPC := groupAndSort(filtered, groupBy, sortSpec, topN)
	if len(invalidUPC) > 0 {
		s.logger.Warn("products with malformed UPC excluded",
			zap.Int("count", len(invalidUPC)),
			zap.Strings("skus", invalidUPC),
		)
	}

	view := &View{
		Groups:   groups,
		Filter:   req.Filter,
		Sort:     sortSpec.Strings(),
		Status:   loaded.Status,
		Total:    len(loaded.Products),
		Matched:  len(filtered),
		Rejected: len(invalidUPC),
		MaxScore: loaded.MaxScore,
	}
	if loaded.Err != nil {
		view.Error = loaded.Err.Error()
	}
	return view
}

// ReloadResult summarises a forced catalog refresh
type ReloadResult struct {
	Status   LoadStatus `json:"status"`
	Products int        `json:"products"`
	Error    string     `json:"error,omitempty"`
}

// Reload discards the cached catalog and fetches it again
func (s *CatalogService) Reload(ctx context.Context) *ReloadResult {
	loaded := s.repo.Invalidate(ctx)
	result := &ReloadResult{Status: loaded.Status, Products: len(loaded.Products)}
	if loaded.Err != nil {
		result.Error = loaded.Err.Error()
	}
	s.logger.Info("catalog reloaded",
		zap.String("status", string(loaded.Status)),
		zap.Int("products", result.Products),
	)
	return result
}

// Categories returns the flattened category filter options
func (s *CatalogService) Categories(ctx context.Context) ([]domain.CategoryOption, LoadStatus) {
	loaded := s.repo.Load(ctx)
	return BuildCategoryTree(loaded.Products), loaded.Status
}

// Countries returns the country filter options
func (s *CatalogService) Countries(ctx context.Context) ([]domain.Country, LoadStatus) {
	loaded := s.repo.Load(ctx)
	return ListCountries(loaded.Products), loaded.Status
}

// PriceHistory fetches the price history of sku and derives its series
func (s *CatalogService) PriceHistory(ctx context.Context, sku string) (*PriceSeries, error) {
	if sku == "" {
		return nil, domain.ErrInvalidRequest
	}

	loaded := s.repo.Load(ctx)
	product, ok := findProduct(loaded.Products, sku)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, sku)
	}

	points, err := s.client.FetchPriceHistory(ctx, sku)
	if err != nil {
		s.logger.Error("price history fetch failed", zap.String("sku", sku), zap.Error(err))
		return nil, fmt.Errorf("price history for %s: %w", sku, err)
	}

	series := BuildPriceSeries(product, points, loaded.MaxScore)
	return &series, nil
}

// resolveSort appends the default keys that lead does not already name
func (s *CatalogService) resolveSort(lead domain.SortSpec) domain.SortSpec {
	spec := make(domain.SortSpec, 0, len(lead)+len(s.defaultSort))
	named := make(map[domain.SortField]bool)
	for _, key := range lead {
		if named[key.Field] {
			continue
		}
		named[key.Field] = true
		spec = append(spec, key)
	}
	for _, key := range s.defaultSort {
		if !named[key.Field] {
			named[key.Field] = true
			spec = append(spec, key)
		}
	}
	return spec
}

func findProduct(products []domain.Product, sku string) (domain.Product, bool) {
	for i := range products {
		if products[i].SKU == sku {
			return products[i], true
		}
	}
	return domain.Product{}, false
}
