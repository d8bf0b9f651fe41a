package ingestion

import (
	"sync"
	"time"
)

// MetricsSnapshot tracks bridge throughput
type MetricsSnapshot struct {
	MessagesReceived      int64         `json:"messages_received"`
	MessagesProcessed     int64         `json:"messages_processed"`
	MessagesFailed        int64         `json:"messages_failed"`
	MessagesDropped       int64         `json:"messages_dropped"`
	LastProcessedAt       *time.Time    `json:"last_processed_at"`
	AverageProcessingTime time.Duration `json:"average_processing_time_ns"`
	BufferSize            int           `json:"buffer_size"`
}

// MetricsTracker provides a goroutine-safe wrapper around MetricsSnapshot.
type MetricsTracker struct {
	mu      sync.RWMutex
	metrics MetricsSnapshot
}

// NewMetricsTracker builds a new tracker with zeroed metrics.
func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{}
}

// Update applies a mutation in a thread-safe way.
func (t *MetricsTracker) Update(fn func(*MetricsSnapshot)) {
	if fn == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.metrics)
}

// Snapshot returns a copy of the current metrics.
func (t *MetricsTracker) Snapshot() MetricsSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := t.metrics
	if t.metrics.LastProcessedAt != nil {
		at := *t.metrics.LastProcessedAt
		snapshot.LastProcessedAt = &at
	}
	return snapshot
}

// recordSuccess folds one processing duration into the running average.
func (t *MetricsTracker) recordSuccess(took time.Duration, at time.Time) {
	t.Update(func(m *MetricsSnapshot) {
		m.MessagesProcessed++
		m.LastProcessedAt = &at
		if m.AverageProcessingTime == 0 {
			m.AverageProcessingTime = took
		} else {
			m.AverageProcessingTime = (m.AverageProcessingTime + took) / 2
		}
	})
}
