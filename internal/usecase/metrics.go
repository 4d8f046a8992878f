package usecase

import (
	"sync/atomic"
	"time"
)

// Metrics tracks engine usage. A nil *Metrics discards every record.
type Metrics struct {
	startTime            time.Time
	embeddingCacheHits   atomic.Int64
	embeddingCacheMisses atomic.Int64
	providerCalls        atomic.Int64
	providerFailures     atomic.Int64
	providerTimeouts     atomic.Int64
	pairsCompared        atomic.Int64
	pairsSkipped         atomic.Int64
	computeErrors        atomic.Int64
	failedChunks         atomic.Int64
	analysisCacheHits    atomic.Int64
	analyses             atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Uptime               string  `json:"uptime"`
	EmbeddingCacheHits   int64   `json:"embeddingCacheHits"`
	EmbeddingCacheMisses int64   `json:"embeddingCacheMisses"`
	EmbeddingCacheRate   float64 `json:"embeddingCacheHitRate"`
	ProviderCalls        int64   `json:"providerCalls"`
	ProviderFailures     int64   `json:"providerFailures"`
	ProviderTimeouts     int64   `json:"providerTimeouts"`
	PairsCompared        int64   `json:"pairsCompared"`
	PairsSkipped         int64   `json:"pairsSkipped"`
	ComputeErrors        int64   `json:"computeErrors"`
	FailedChunks         int64   `json:"failedChunks"`
	Analyses             int64   `json:"analyses"`
	AnalysisCacheHits    int64   `json:"analysisCacheHits"`
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) recordEmbeddingCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.embeddingCacheHits.Add(1)
	} else {
		m.embeddingCacheMisses.Add(1)
	}
}

func (m *Metrics) recordProviderCall(err error, timedOut bool) {
	if m == nil {
		return
	}
	m.providerCalls.Add(1)
	switch {
	case timedOut:
		m.providerTimeouts.Add(1)
	case err != nil:
		m.providerFailures.Add(1)
	}
}

func (m *Metrics) recordPairs(compared, skipped, failed int) {
	if m == nil {
		return
	}
	m.pairsCompared.Add(int64(compared))
	m.pairsSkipped.Add(int64(skipped))
	m.computeErrors.Add(int64(failed))
}

func (m *Metrics) recordFailedChunk() {
	if m == nil {
		return
	}
	m.failedChunks.Add(1)
}

func (m *Metrics) recordAnalysis(cached bool) {
	if m == nil {
		return
	}
	m.analyses.Add(1)
	if cached {
		m.analysisCacheHits.Add(1)
	}
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}

	hits := m.embeddingCacheHits.Load()
	misses := m.embeddingCacheMisses.Load()
	rate := 0.0
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	return MetricsSnapshot{
		Uptime:               time.Since(m.startTime).Round(time.Second).String(),
		EmbeddingCacheHits:   hits,
		EmbeddingCacheMisses: misses,
		EmbeddingCacheRate:   rate,
		ProviderCalls:        m.providerCalls.Load(),
		ProviderFailures:     m.providerFailures.Load(),
		ProviderTimeouts:     m.providerTimeouts.Load(),
		PairsCompared:        m.pairsCompared.Load(),
		PairsSkipped:         m.pairsSkipped.Load(),
		ComputeErrors:        m.computeErrors.Load(),
		FailedChunks:         m.failedChunks.Load(),
		Analyses:             m.analyses.Load(),
		AnalysisCacheHits:    m.analysisCacheHits.Load(),
	}
}
