package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedsFailed        int64
	RawEntries         int64
	DuplicatesFiltered int64
	SummariesCached    int64
	SummariesGenerated int64
	SummariesFailed    int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) RecordFeed(entries int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.FeedsFailed++
		return
	}
	m.FeedsFetched++
	m.RawEntries += int64(entries)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddSummariesCached(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesCached += int64(n)
}

func (m *Metrics) AddSummaries(generated, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated += int64(generated)
	m.SummariesFailed += int64(failed)
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

// LogArgs flattens the counters into slog key/value pairs.
func (m *Metrics) LogArgs() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return []any{
		"feeds_fetched", m.FeedsFetched,
		"feeds_failed", m.FeedsFailed,
		"raw_entries", m.RawEntries,
		"duplicates_filtered", m.DuplicatesFiltered,
		"summaries_cached", m.SummariesCached,
		"summaries_generated", m.SummariesGenerated,
		"summaries_failed", m.SummariesFailed,
		"processing_time_ms", m.LastProcessingTime.Milliseconds(),
		"is_healthy", m.IsHealthy,
	}
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":              m.FeedsFetched,
		"feeds_failed":               m.FeedsFailed,
		"raw_entries":                m.RawEntries,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"summaries_cached":           m.SummariesCached,
		"summaries_generated":        m.SummariesGenerated,
		"summaries_failed":           m.SummariesFailed,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
