package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")

	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 {
		t.Fatalf("count = %d, want 2", s.Count)
	}
	if s.MinMs != 2 || s.MaxMs != 4 {
		t.Errorf("min/max = %v/%v, want 2/4", s.MinMs, s.MaxMs)
	}
	if s.AvgMs != 3 {
		t.Errorf("avg = %v, want 3", s.AvgMs)
	}

	m.Reset()
	if m.Count() != 0 {
		t.Errorf("expected reset count 0, got %d", m.Count())
	}
}

func TestTimerDisabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("disabled timer recorded %d samples", m.Count())
	}
}

func TestWriteReport(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	defer ResetAll()

	Fetch.Record(time.Millisecond)
	ResourceCache.Hit()
	ResourceCache.Miss()
	ResourceCache.Shared()

	var buf bytes.Buffer
	WriteReport(&buf)
	out := buf.String()
	if !strings.Contains(out, "resource_fetch") {
		t.Errorf("report missing fetch metric: %q", out)
	}
	if !strings.Contains(out, "hits=1 misses=1 shared=1") {
		t.Errorf("report missing cache counters: %q", out)
	}
	if strings.Contains(out, "candidate_search") {
		t.Errorf("report should omit empty metrics: %q", out)
	}
}
