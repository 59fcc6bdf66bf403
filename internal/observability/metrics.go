package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	authOutcomes map[string]int64
	latencyTotal map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		authOutcomes: make(map[string]int64),
		latencyTotal: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencyTotal[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordAuth counts an authentication outcome such as "login_ok" or "gate_forbidden".
func (m *Metrics) RecordAuth(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authOutcomes[outcome]++
}

// Snapshot copies the counters for reporting.
func (m *Metrics) Snapshot() map[string]map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]map[string]int64{
		"requests":   copyCounts(m.requestCount),
		"errors":     copyCounts(m.errorCount),
		"auth":       copyCounts(m.authOutcomes),
		"latency_ms": latencyMillis(m.latencyTotal),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func latencyMillis(src map[string]time.Duration) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v.Milliseconds()
	}
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
