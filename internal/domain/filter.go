package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// FilterSpec holds the user-selected filter criteria. The zero value of a
// field means no constraint on that dimension.
type FilterSpec struct {
	Country    string `json:"country"`
	Category   int    `json:"category"`
	Search     string `json:"search"`
	IsNew      bool   `json:"is_new"`
	SingleOnly bool   `json:"single_only"`
	SaleOnly   bool   `json:"sale_only"`
}

// FilterOption sets one dimension of a FilterSpec
type FilterOption func(*FilterSpec)

// WithCountry constrains the declared country code
func WithCountry(code string) FilterOption {
	return func(f *FilterSpec) { f.Country = strings.TrimSpace(code) }
}

// WithCategory constrains any level of the category chain
func WithCategory(id int) FilterOption {
	return func(f *FilterSpec) { f.Category = id }
}

// WithSearch sets the free-text query
func WithSearch(query string) FilterOption {
	return func(f *FilterSpec) { f.Search = strings.TrimSpace(query) }
}

// WithNewOnly keeps only products flagged as new
func WithNewOnly(on bool) FilterOption {
	return func(f *FilterSpec) { f.IsNew = on }
}

// WithSingleOnly keeps only single-unit packages
func WithSingleOnly(on bool) FilterOption {
	return func(f *FilterSpec) { f.SingleOnly = on }
}

// WithSaleOnly keeps only products priced below their regular price
func WithSaleOnly(on bool) FilterOption {
	return func(f *FilterSpec) { f.SaleOnly = on }
}

// NewFilterSpec builds a fully populated FilterSpec; every dimension not
// named by an option is left unconstrained.
func NewFilterSpec(opts ...FilterOption) FilterSpec {
	spec := FilterSpec{}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// FilterSpecFromValues reads a FilterSpec from flat key/value pairs such as
// URL query parameters. Malformed values are treated as absent.
func FilterSpecFromValues(values url.Values) FilterSpec {
	category, _ := strconv.Atoi(strings.TrimSpace(values.Get("category")))
	return NewFilterSpec(
		WithCountry(values.Get("country")),
		WithCategory(category),
		WithSearch(values.Get("search")),
		WithNewOnly(parseFlag(values.Get("is_new"))),
		WithSingleOnly(parseFlag(values.Get("single_only"))),
		WithSaleOnly(parseFlag(values.Get("sale_only"))),
	)
}

// Values renders the active dimensions as flat key/value pairs, the inverse
// of FilterSpecFromValues.
func (f FilterSpec) Values() url.Values {
	values := url.Values{}
	if f.Category != 0 {
		values.Set("category", strconv.Itoa(f.Category))
	}
	if f.Country != "" {
		values.Set("country", f.Country)
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.IsNew {
		values.Set("is_new", "true")
	}
	if f.SingleOnly {
		values.Set("single_only", "true")
	}
	if f.SaleOnly {
		values.Set("sale_only", "true")
	}
	return values
}

func parseFlag(raw string) bool {
	on, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && on
}
