package usecase

import (
	"strings"

	"github.com/boozescore/backend/internal/domain"
)

// DefaultNoiseFloor is the minimum combined score shown when no filter
// reduced the catalog
const DefaultNoiseFloor = 1000

// FilterEngine reduces a product collection by a FilterSpec
type FilterEngine struct {
	noiseFloor float64
}

// NewFilterEngine creates a filter engine; a non-positive floor uses the default
func NewFilterEngine(noiseFloor float64) *FilterEngine {
	if noiseFloor <= 0 {
		noiseFloor = DefaultNoiseFloor
	}
	return &FilterEngine{noiseFloor: noiseFloor}
}

// Apply returns the products matching every active dimension of spec.
// When nothing was filtered out, only products at or above the noise floor
// are kept. The input slice is never modified.
func (e *FilterEngine) Apply(products []domain.Product, spec domain.FilterSpec) []domain.Product {
	query := strings.ToLower(spec.Search)

	filtered := make([]domain.Product, 0, len(products))
	for i := range products {
		if matches(&products[i], spec, query) {
			filtered = append(filtered, products[i])
		}
	}

	if len(filtered) == len(products) {
		floored := filtered[:0]
		for i := range filtered {
			if filtered[i].CombinedScore >= e.noiseFloor {
				floored = append(floored, filtered[i])
			}
		}
		filtered = floored
	}

	return filtered
}

func matches(p *domain.Product, spec domain.FilterSpec, query string) bool {
	if spec.Category != 0 && !inCategory(p, spec.Category) {
		return false
	}
	if spec.Country != "" && p.Country.Code != spec.Country {
		return false
	}
	if query != "" && !matchesSearch(p, query) {
		return false
	}
	if spec.IsNew && !p.IsNew {
		return false
	}
	if spec.SingleOnly && p.UnitSize > 1 {
		return false
	}
	if spec.SaleOnly && !onSale(p) {
		return false
	}
	return true
}

func inCategory(p *domain.Product, id int) bool {
	for _, c := range p.FullCategory {
		if c.ID == id {
			return true
		}
	}
	return false
}

// matchesSearch checks query (already lower-cased) against the name, the
// category chain and the UPC read from its second digit.
func matchesSearch(p *domain.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) {
		return true
	}
	for _, c := range p.FullCategory {
		if strings.Contains(strings.ToLower(c.Description), query) {
			return true
		}
	}
	return len(p.UPC) > 1 && strings.HasPrefix(p.UPC[1:], query)
}

func onSale(p *domain.Product) bool {
	return p.Price != nil && p.Price.SalePrice < p.Price.Price
}
