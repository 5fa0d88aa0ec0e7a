package domain

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Product is a catalog entry as served by the catalog API. Products are
// read-only once fetched.
type Product struct {
	SKU                string         `json:"sku"`
	Name               string         `json:"name"`
	UPC                string         `json:"upc"`
	Image              string         `json:"image,omitempty"`
	TastingDescription string         `json:"tastingDescription,omitempty"`
	URL                string         `json:"url,omitempty"`
	Price              *Price         `json:"price"` // nil excludes the product from grouping
	Category           string         `json:"category"`
	FullCategory       []CategoryNode `json:"full_category"`
	Country            Country        `json:"country"`
	Alcohol            float64        `json:"alcohol"`   // percent
	Volume             float64        `json:"volume"`    // liters
	UnitSize           int            `json:"unit_size"` // units per package
	CombinedScore      float64        `json:"combined_score"`
	PPML               float64        `json:"ppml,omitempty"`
	IsNew              bool           `json:"is_new"`
}

// Price holds the regular and current price of a product
type Price struct {
	Price            float64 `json:"price"`
	SalePrice        float64 `json:"sale_price"`
	PromotionEndDate string  `json:"promotion_end_date,omitempty"`
}

// CategoryNode is one level of a product's category chain
type CategoryNode struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Country is the declared country of origin of a product
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CategoryOption is a flattened, display-ordered category filter entry
type CategoryOption struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Depth       int    `json:"depth"`
}

// DecoratedProduct is a Product with the fields derived for display
type DecoratedProduct struct {
	Product
	URL           string  `json:"url"`
	Image         string  `json:"image"`
	PriceDrop     float64 `json:"price_drop"`
	PriceDropRate float64 `json:"price_drop_rate"`
	ActualCountry *string `json:"actual_country"`
}

// GroupedResult is one ranked group of the view
type GroupedResult struct {
	GroupKey string             `json:"group_key"`
	Items    []DecoratedProduct `json:"items"`
}

// CatalogResponse is the payload of the bulk catalog endpoint
type CatalogResponse struct {
	Products []Product `json:"products"`
}

// PricePoint is one entry of a product's price history
type PricePoint struct {
	LastUpdated Timestamp `json:"last_updated"`
	Price       float64   `json:"price"`
}

// Timestamp decodes both RFC 3339 and RFC 1123 (HTTP date) encoded times.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, http.TimeFormat, time.RFC1123, time.RFC1123Z, "2006-01-02T15:04:05", "2006-01-02"}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}
