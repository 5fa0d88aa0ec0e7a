package usecase

import (
	"math"
	"slices"
	"time"

	"github.com/boozescore/backend/internal/domain"
)

// SeriesPoint is one price history entry with its derived values
type SeriesPoint struct {
	At           time.Time `json:"at"`
	Price        float64   `json:"price"`
	Delta        float64   `json:"delta"` // change from the previous point
	Score        int       `json:"score"`
	ScorePercent int       `json:"score_percent"`
}

// PriceSeries is the derived history of one product
type PriceSeries struct {
	SKU      string        `json:"sku"`
	MaxScore float64       `json:"max_score"`
	Points   []SeriesPoint `json:"points"`
}

// BuildPriceSeries orders points by time and derives, for each point, the
// price change and the score the product would have had at that price.
// maxScore is the best score of the loaded catalog.
func BuildPriceSeries(product domain.Product, points []domain.PricePoint, maxScore float64) PriceSeries {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b domain.PricePoint) int {
		return a.LastUpdated.Compare(b.LastUpdated.Time)
	})

	series := PriceSeries{
		SKU:      product.SKU,
		MaxScore: maxScore,
		Points:   make([]SeriesPoint, 0, len(sorted)),
	}
	for i, p := range sorted {
		point := SeriesPoint{
			At:    p.LastUpdated.Time,
			Price: p.Price,
			Score: ScoreAtPrice(product, p.Price),
		}
		if i > 0 {
			point.Delta = p.Price - sorted[i-1].Price
		}
		point.ScorePercent = ScorePercent(float64(point.Score), maxScore)
		series.Points = append(series.Points, point)
	}
	return series
}

// ScoreAtPrice is the combined score of product at the given price:
// millilitres per dollar weighted by alcohol content.
func ScoreAtPrice(product domain.Product, price float64) int {
	units := product.UnitSize
	if units <= 0 {
		units = 1
	}
	totalML := product.Volume * 1000 * float64(units)
	if price <= 0 || totalML <= 0 {
		return 0
	}
	pricePerML := price / totalML
	return int(math.Round((1 / pricePerML) * (product.Alcohol + 1)))
}

// ScorePercent expresses value as a rounded percentage of best
func ScorePercent(value, best float64) int {
	if best == 0 {
		return 0
	}
	return int(math.Round(value / best * 100))
}
