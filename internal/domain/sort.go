package domain

import (
	"cmp"
	"fmt"
	"strings"
)

// descendingMarker prefixes a sort key to reverse its order
const descendingMarker = "-"

// SortField names a sortable attribute of a DecoratedProduct
type SortField string

const (
	SortCombinedScore SortField = "combined_score"
	SortPrice         SortField = "price"
	SortSalePrice     SortField = "sale_price"
	SortPriceDrop     SortField = "price_drop"
	SortPriceDropRate SortField = "price_drop_rate"
	SortAlcohol       SortField = "alcohol"
	SortVolume        SortField = "volume"
	SortUnitSize      SortField = "unit_size"
	SortPPML          SortField = "ppml"
	SortName          SortField = "name"
	SortSKU           SortField = "sku"
	SortIsNew         SortField = "is_new"
)

// SortValue is the comparable value of a sort field. Numeric and text
// fields never compare against each other since a key has a single kind.
type SortValue struct {
	num  float64
	text string
}

// Compare returns -1, 0 or +1
func (v SortValue) Compare(other SortValue) int {
	if c := cmp.Compare(v.num, other.num); c != 0 {
		return c
	}
	return strings.Compare(v.text, other.text)
}

// Number returns the numeric part of the value
func (v SortValue) Number() float64 {
	return v.num
}

func number(f float64) SortValue { return SortValue{num: f} }
func text(s string) SortValue    { return SortValue{text: s} }

func priceOf(p *DecoratedProduct) Price {
	if p.Price == nil {
		return Price{}
	}
	return *p.Price
}

var sortAccessors = map[SortField]func(*DecoratedProduct) SortValue{
	SortCombinedScore: func(p *DecoratedProduct) SortValue { return number(p.CombinedScore) },
	SortPrice:         func(p *DecoratedProduct) SortValue { return number(priceOf(p).Price) },
	SortSalePrice:     func(p *DecoratedProduct) SortValue { return number(priceOf(p).SalePrice) },
	SortPriceDrop:     func(p *DecoratedProduct) SortValue { return number(p.PriceDrop) },
	SortPriceDropRate: func(p *DecoratedProduct) SortValue { return number(p.PriceDropRate) },
	SortAlcohol:       func(p *DecoratedProduct) SortValue { return number(p.Alcohol) },
	SortVolume:        func(p *DecoratedProduct) SortValue { return number(p.Volume) },
	SortUnitSize:      func(p *DecoratedProduct) SortValue { return number(float64(p.UnitSize)) },
	SortPPML:          func(p *DecoratedProduct) SortValue { return number(p.PPML) },
	SortName:          func(p *DecoratedProduct) SortValue { return text(p.Name) },
	SortSKU:           func(p *DecoratedProduct) SortValue { return text(p.SKU) },
	SortIsNew: func(p *DecoratedProduct) SortValue {
		if p.IsNew {
			return number(1)
		}
		return number(0)
	},
}

// Value resolves the field on p. Unknown fields resolve to the zero value;
// use ParseSortKey to reject them up front.
func (f SortField) Value(p *DecoratedProduct) SortValue {
	accessor, ok := sortAccessors[f]
	if !ok {
		return SortValue{}
	}
	return accessor(p)
}

// SortKey is a single, validated sort criterion
type SortKey struct {
	Field SortField
	Desc  bool
}

// String renders the key in its wire form, e.g. "-combined_score"
func (k SortKey) String() string {
	if k.Desc {
		return descendingMarker + string(k.Field)
	}
	return string(k.Field)
}

// Compare orders a and b by this key, honoring the descending marker
func (k SortKey) Compare(a, b *DecoratedProduct) int {
	c := k.Field.Value(a).Compare(k.Field.Value(b))
	if k.Desc {
		return -c
	}
	return c
}

// ParseSortKey parses "field" or "-field"
func ParseSortKey(raw string) (SortKey, error) {
	raw = strings.TrimSpace(raw)
	key := SortKey{}
	if strings.HasPrefix(raw, descendingMarker) {
		key.Desc = true
		raw = strings.TrimPrefix(raw, descendingMarker)
	}
	key.Field = SortField(raw)
	if _, ok := sortAccessors[key.Field]; !ok {
		return SortKey{}, fmt.Errorf("%w: %q", ErrInvalidSortKey, raw)
	}
	return key, nil
}

// SortSpec is an ordered list of sort keys evaluated left to right
type SortSpec []SortKey

// ParseSortSpec validates every key; an empty input yields an empty spec
func ParseSortSpec(raw []string) (SortSpec, error) {
	spec := make(SortSpec, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		key, err := ParseSortKey(r)
		if err != nil {
			return nil, err
		}
		spec = append(spec, key)
	}
	return spec, nil
}

// MustParseSortSpec is ParseSortSpec for static specs; it panics on error
func MustParseSortSpec(raw ...string) SortSpec {
	spec, err := ParseSortSpec(raw)
	if err != nil {
		panic(err)
	}
	return spec
}

// Compare is a lexicographic multi-key comparator: the first unequal key decides
func (s SortSpec) Compare(a, b *DecoratedProduct) int {
	for _, key := range s {
		if c := key.Compare(a, b); c != 0 {
			return c
		}
	}
	return 0
}

// Strings renders the spec in wire form
func (s SortSpec) Strings() []string {
	out := make([]string, len(s))
	for i, k := range s {
		out[i] = k.String()
	}
	return out
}

// GroupField names the attribute products are bucketed by
type GroupField string

const (
	GroupCategory    GroupField = "category"
	GroupSubcategory GroupField = "subcategory"
	GroupCountry     GroupField = "country"
)

var groupAccessors = map[GroupField]func(*Product) string{
	GroupCategory: func(p *Product) string {
		if p.Category != "" {
			return p.Category
		}
		return categoryDescription(p, 0)
	},
	GroupSubcategory: func(p *Product) string { return categoryDescription(p, 1) },
	GroupCountry:     func(p *Product) string { return p.Country.Code },
}

func categoryDescription(p *Product, level int) string {
	if level < len(p.FullCategory) {
		return p.FullCategory[level].Description
	}
	return ""
}

// Key resolves the group value of p. Unknown fields group by category.
func (f GroupField) Key(p *Product) string {
	accessor, ok := groupAccessors[f]
	if !ok {
		accessor = groupAccessors[GroupCategory]
	}
	return accessor(p)
}

// ParseGroupField validates a group key; empty input defaults to category
func ParseGroupField(raw string) (GroupField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return GroupCategory, nil
	}
	field := GroupField(raw)
	if _, ok := groupAccessors[field]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidGroupKey, raw)
	}
	return field, nil
}
