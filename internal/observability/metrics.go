package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for import runs and the admin API.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	replayCount  map[string]int64
}

// Replay counter names.
const (
	CounterEntries  = "entries_created"
	CounterSkipped  = "events_skipped"
	CounterIgnored  = "events_ignored"
	CounterFailures = "replay_failures"
	CounterEntities = "entities_replayed"
)

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		replayCount:  make(map[string]int64),
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

// AddReplay adds n to a per-vendor replay counter.
func (m *Metrics) AddReplay(vendor, counter string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replayCount[vendor+"|"+counter] += int64(n)
}

// Replay returns the current value of a per-vendor replay counter.
func (m *Metrics) Replay(vendor, counter string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replayCount[vendor+"|"+counter]
}

// Sample is one counter value.
type Sample struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// Snapshot returns all counters sorted by name and key.
func (m *Metrics) Snapshot() []Sample {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Sample
	add := func(name string, counts map[string]int64) {
		for key, v := range counts {
			out = append(out, Sample{Name: name, Key: key, Value: v})
		}
	}
	add("http_requests", m.requestCount)
	add("http_errors", m.errorCount)
	add("replay", m.replayCount)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
