package usecase

import (
	"errors"
	"slices"

	"github.com/boozescore/backend/internal/domain"
)

const (
	productURLPrefix = "https://www.bcliquorstores.com/product/"
	imagePathPrefix  = "/image/height400/"
)

// ProductURL returns the canonical product page of a SKU
func ProductURL(sku string) string {
	return productURLPrefix + sku
}

// ProductImage returns the canonical image path of a SKU
func ProductImage(sku string) string {
	return imagePathPrefix + sku + ".jpg"
}

// GroupAndSort turns products into ranked groups:
//  1. drop products without a price or with a malformed UPC
//  2. decorate with url, image, price drop and UPC country
//  3. bucket by groupBy, keeping first-seen bucket order
//  4. sort each bucket by sortSpec (stable)
//  5. keep the first topN items of each bucket (topN <= 0 keeps all)
//  6. order buckets by the maximum value of the last sort key, descending
//
// The input slice is never modified.
func GroupAndSort(products []domain.Product, groupBy domain.GroupField, sortSpec domain.SortSpec, topN int) []domain.GroupedResult {
	groups, _ := groupAndSort(products, groupBy, sortSpec, topN)
	return groups
}

// groupAndSort is GroupAndSort that also returns the SKUs dropped for a
// malformed UPC, in input order.
func groupAndSort(products []domain.Product, groupBy domain.GroupField, sortSpec domain.SortSpec, topN int) ([]domain.GroupedResult, []string) {
	index := make(map[string]int)
	groups := make([]domain.GroupedResult, 0)
	var invalidUPC []string

	for i := range products {
		item, err := decorate(products[i])
		if errors.Is(err, domain.ErrInvalidUPC) {
			invalidUPC = append(invalidUPC, products[i].SKU)
		}
		if err != nil {
			continue
		}
		key := groupBy.Key(&item.Product)
		pos, seen := index[key]
		if !seen {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, domain.GroupedResult{GroupKey: key})
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}

	for i := range groups {
		items := groups[i].Items
		slices.SortStableFunc(items, func(a, b domain.DecoratedProduct) int {
			return sortSpec.Compare(&a, &b)
		})
		if topN > 0 && len(items) > topN {
			items = items[:topN:topN]
		}
		groups[i].Items = items
	}

	if len(sortSpec) > 0 {
		rankBy := sortSpec[len(sortSpec)-1].Field
		peaks := make(map[string]domain.SortValue, len(groups))
		for i := range groups {
			peaks[groups[i].GroupKey] = peak(groups[i].Items, rankBy)
		}
		slices.SortStableFunc(groups, func(a, b domain.GroupedResult) int {
			return peaks[b.GroupKey].Compare(peaks[a.GroupKey])
		})
	}

	return groups, invalidUPC
}

// errNoPrice marks a product that has no price and so cannot be ranked
var errNoPrice = errors.New("product has no price")

// decorate derives the display fields of p. It fails when p is not eligible
// for grouping.
func decorate(p domain.Product) (domain.DecoratedProduct, error) {
	if p.Price == nil {
		return domain.DecoratedProduct{}, errNoPrice
	}

	var actual *string
	if p.UPC != "" {
		country, found, err := LookupCountry(p.UPC)
		if err != nil {
			return domain.DecoratedProduct{}, err
		}
		if found {
			actual = &country
		}
	}

	drop := p.Price.Price - p.Price.SalePrice
	var rate float64
	if p.Price.Price != 0 {
		rate = drop / p.Price.Price
	}

	return domain.DecoratedProduct{
		Product:       p,
		URL:           ProductURL(p.SKU),
		Image:         ProductImage(p.SKU),
		PriceDrop:     drop,
		PriceDropRate: rate,
		ActualCountry: actual,
	}, nil
}

func peak(items []domain.DecoratedProduct, field domain.SortField) domain.SortValue {
	var best domain.SortValue
	for i := range items {
		v := field.Value(&items[i])
		if i == 0 || v.Compare(best) > 0 {
			best = v
		}
	}
	return best
}
