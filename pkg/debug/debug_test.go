package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func withCapture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Enabled()
	SetOutput(&buf)
	SetEnabled(true)
	t.Cleanup(func() {
		SetEnabled(prev)
	})
	return &buf
}

func TestLogWritesWhenEnabled(t *testing.T) {
	buf := withCapture(t)

	Log("loaded %d constituencies", 234)
	LogTiming("derive", 5*time.Millisecond)
	Dump("years", []int{2021, 2016})

	got := buf.String()
	if !strings.Contains(got, "[VOTEMAP_DEBUG] ") {
		t.Errorf("missing prefix in %q", got)
	}
	if !strings.Contains(got, "loaded 234 constituencies") {
		t.Errorf("missing message in %q", got)
	}
	if !strings.Contains(got, "derive took 5ms") {
		t.Errorf("missing timing in %q", got)
	}
	if !strings.Contains(got, "years: []int = [2021 2016]") {
		t.Errorf("missing dump in %q", got)
	}
}

func TestLogSilentWhenDisabled(t *testing.T) {
	buf := withCapture(t)
	SetEnabled(false)

	Log("should not appear")
	LogIf(true, "nor this")
	Section("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
