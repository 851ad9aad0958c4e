package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestDebouncer_RunsLastTrigger(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var last atomic.Int32
	for i := int32(1); i <= 5; i++ {
		d.Trigger(func() { last.Store(i) })
	}
	time.Sleep(120 * time.Millisecond)

	if got := last.Load(); got != 5 {
		t.Errorf("expected the last trigger to run, got %d", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitChange(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case p := <-w.Changed():
		return p
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change")
	}
	return ""
}

func TestWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "constituencies.json")
	other := filepath.Join(dir, "elections-2021.json")
	writeFile(t, meta, "{}")
	writeFile(t, other, "{}")

	var seen atomic.Value
	w, err := New([]string{meta},
		WithDebounceDuration(20*time.Millisecond),
		WithOnChange(func(p string) { seen.Store(p) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Unwatched siblings are ignored.
	writeFile(t, other, `{"year":2021}`)
	time.Sleep(100 * time.Millisecond)
	select {
	case p := <-w.Changed():
		t.Fatalf("unexpected change for %s", p)
	default:
	}

	writeFile(t, meta, `{"1":{"name":"A"}}`)
	if got := waitChange(t, w); got != meta {
		t.Errorf("changed path = %s, want %s", got, meta)
	}
	if seen.Load() != meta {
		t.Errorf("OnChange saw %v", seen.Load())
	}
}

func TestWatcher_PollingFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "constituencies.json")
	writeFile(t, path, "{}")

	w, err := New([]string{path},
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, `{"changed": true}`)
	if got := waitChange(t, w); got != path {
		t.Errorf("changed path = %s", got)
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv("VOTEMAP_FORCE_POLL", "yes")
	path := filepath.Join(t.TempDir(), "meta.json")
	writeFile(t, path, "{}")

	w, err := New([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if !w.IsPolling() {
		t.Error("VOTEMAP_FORCE_POLL should force polling")
	}
}

func TestWatcher_FileRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	writeFile(t, path, "{}")

	errCh := make(chan error, 4)
	w, err := New([]string{path},
		WithPollInterval(20*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, ErrFileRemoved) {
			t.Errorf("err = %v, want ErrFileRemoved", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("removal not reported")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	writeFile(t, path, "{}")

	w, err := New([]string{path}, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Fatal("started before Start")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start: %v", err)
	}
	w.Stop()
	w.Stop()
	if w.IsStarted() {
		t.Error("still started after Stop")
	}
	if err := w.Start(); err != nil {
		t.Errorf("restart: %v", err)
	}
	w.Stop()
}

func TestNew_NoFiles(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("err = %v", err)
	}
}

func TestNew_AbsolutePaths(t *testing.T) {
	w, err := New([]string{"relative.json"})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range w.Paths() {
		if !filepath.IsAbs(p) {
			t.Errorf("%s is not absolute", p)
		}
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"TRUE", true},
		{" on ", true},
		{"0", false},
		{"off", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("VOTEMAP_TEST_BOOL", tt.value)
			if got := envBool("VOTEMAP_TEST_BOOL"); got != tt.want {
				t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
