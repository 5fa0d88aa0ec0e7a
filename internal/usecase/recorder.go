package usecase

// Recorder receives pipeline events for instrumentation
type Recorder interface {
	CacheHit()
	CacheMiss()
	CatalogFetched(products int)
	CatalogFetchFailed()
}

// NopRecorder discards all events
type NopRecorder struct{}

func (NopRecorder) CacheHit()           {}
func (NopRecorder) CacheMiss()          {}
func (NopRecorder) CatalogFetched(int)  {}
func (NopRecorder) CatalogFetchFailed() {}
