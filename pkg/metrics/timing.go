// Package metrics provides in-process performance instrumentation for votemap.
//
// Timing metrics cover the hot paths (resource fetch, dataset derivation,
// search, history, map rendering) and cache counters track ResourceCache
// effectiveness. Collection is on by default; set VOTEMAP_METRICS=0 to
// disable it. Set VOTEMAP_METRICS=1 to also print a report on exit.
//
//	func derive() {
//	    defer metrics.Timer(metrics.Derive)()
//	    // ...
//	}
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("VOTEMAP_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool { return enabled.Load() }

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) { enabled.Store(e) }

// ReportRequested reports whether VOTEMAP_METRICS asks for an exit report.
func ReportRequested() bool {
	v := os.Getenv("VOTEMAP_METRICS")
	return v != "" && v != "0"
}

// TimingMetric tracks timing statistics for a named operation.
type TimingMetric struct {
	name    string
	count   atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64
	minNs   atomic.Int64 // 0 means unset
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.totalNs.Add(ns)

	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.minNs.Load()
		if old != 0 && ns >= old {
			break
		}
		if m.minNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats returns a consistent-enough snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.totalNs.Load()
	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(total) / 1e6,
		AvgMs:   float64(avg) / 1e6,
		MaxMs:   float64(m.maxNs.Load()) / 1e6,
		MinMs:   float64(m.minNs.Load()) / 1e6,
	}
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.totalNs.Store(0)
	m.maxNs.Store(0)
	m.minNs.Store(0)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer returns a function that records the elapsed time when called.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// CacheMetric counts hits and misses of a memoizing cache.
type CacheMetric struct {
	name   string
	hits   atomic.Int64
	misses atomic.Int64
	shared atomic.Int64
}

// Hit records a cache hit.
func (c *CacheMetric) Hit() {
	if Enabled() {
		c.hits.Add(1)
	}
}

// Miss records a cache miss that triggered a retrieval.
func (c *CacheMetric) Miss() {
	if Enabled() {
		c.misses.Add(1)
	}
}

// Shared records a caller that joined an in-flight retrieval.
func (c *CacheMetric) Shared() {
	if Enabled() {
		c.shared.Add(1)
	}
}

// Counts returns hits, misses and shared joins.
func (c *CacheMetric) Counts() (hits, misses, shared int64) {
	return c.hits.Load(), c.misses.Load(), c.shared.Load()
}

// Reset zeroes the counters.
func (c *CacheMetric) Reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.shared.Store(0)
}

// Global metrics.
var (
	Fetch   = newTimingMetric("resource_fetch")
	Derive  = newTimingMetric("dataset_derive")
	Search  = newTimingMetric("candidate_search")
	History = newTimingMetric("winner_history")
	Render  = newTimingMetric("map_render")

	ResourceCache = &CacheMetric{name: "resource_cache"}
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{Fetch, Derive, Search, History, Render}
}

// AllTimingStats returns stats for every metric that has data.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}

// ResetAll resets every registered metric.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
	ResourceCache.Reset()
}

// WriteReport prints a plain-text summary of all metrics to w.
func WriteReport(w io.Writer) {
	fmt.Fprintln(w, "votemap metrics")
	for _, s := range AllTimingStats() {
		fmt.Fprintf(w, "  %-18s n=%-5d avg=%.2fms max=%.2fms total=%.2fms\n",
			s.Name, s.Count, s.AvgMs, s.MaxMs, s.TotalMs)
	}
	hits, misses, shared := ResourceCache.Counts()
	fmt.Fprintf(w, "  %-18s hits=%d misses=%d shared=%d\n", ResourceCache.name, hits, misses, shared)
}
