package domain

import "errors"

var (
	// ErrProductNotFound is returned when a SKU is not in the loaded catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCatalogAPIFailure is returned when a catalog API request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrCacheUnavailable is returned when the cache backend cannot be reached
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrInvalidUPC is returned when a UPC is not a string of digits.
	// It signals an upstream data-quality problem, not a missing match.
	ErrInvalidUPC = errors.New("UPC must be a non-empty string of digits")

	// ErrInvalidSortKey is returned for sort keys with no known accessor
	ErrInvalidSortKey = errors.New("invalid sort key")

	// ErrInvalidGroupKey is returned for group keys with no known accessor
	ErrInvalidGroupKey = errors.New("invalid group key")
)
