package models

import "time"

// SystemMetrics aggregates runtime counters for the status endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DocumentsGenerated       uint64    `json:"documents_generated"`
	PagesGenerated           uint64    `json:"pages_generated"`
	AverageGenerationMs      float64   `json:"average_generation_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
