package usecase

import (
	"slices"
	"strings"

	"github.com/boozescore/backend/internal/domain"
)

// ListCountries returns the distinct declared countries of products,
// deduplicated by code and sorted by name.
func ListCountries(products []domain.Product) []domain.Country {
	seen := make(map[string]struct{})
	countries := make([]domain.Country, 0)
	for i := range products {
		c := products[i].Country
		if c.Code == "" {
			continue
		}
		if _, ok := seen[c.Code]; ok {
			continue
		}
		seen[c.Code] = struct{}{}
		countries = append(countries, c)
	}

	slices.SortStableFunc(countries, func(a, b domain.Country) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return countries
}
