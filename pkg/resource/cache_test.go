package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheMemoizes(t *testing.T) {
	var calls atomic.Int32
	c := NewCache("test", func(ctx context.Context, key string) (string, error) {
		calls.Add(1)
		return "value-" + key, nil
	})

	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background(), "a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != "value-a" {
			t.Errorf("Get = %q", v)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("loader called %d times, want 1", calls.Load())
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCacheDeduplicatesInFlight(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	c := NewCache("test", func(ctx context.Context, key string) (*int, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		n := 42
		return &n, nil
	})

	const callers = 8
	results := make([]*int, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := c.Get(context.Background(), "k")
		if err != nil {
			t.Errorf("Get: %v", err)
		}
		results[0] = v
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "k")
			if err != nil {
				t.Errorf("Get: %v", err)
			}
			results[i] = v
		}(i)
	}

	// Give the late callers time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("loader called %d times, want 1", calls.Load())
	}
	stored, ok := c.Peek("k")
	if !ok {
		t.Fatal("value not cached")
	}
	for i, r := range results {
		if r != stored {
			t.Errorf("caller %d got a different value pointer", i)
		}
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	var calls atomic.Int32
	c := NewCache("test", func(ctx context.Context, key string) (string, error) {
		if calls.Add(1) == 1 {
			return "", &Error{Resource: key, Status: http.StatusServiceUnavailable}
		}
		return "ok", nil
	})

	_, err := c.Get(context.Background(), "elections-2021.json")
	re, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if re.Resource != "elections-2021.json" || re.Status != http.StatusServiceUnavailable {
		t.Errorf("unexpected error fields %+v", re)
	}
	if _, cached := c.Peek("elections-2021.json"); cached {
		t.Fatal("failed result must not be cached")
	}

	v, err := c.Get(context.Background(), "elections-2021.json")
	if err != nil || v != "ok" {
		t.Errorf("retry = %q, %v", v, err)
	}
	if calls.Load() != 2 {
		t.Errorf("loader called %d times, want 2", calls.Load())
	}
}

func TestCacheClear(t *testing.T) {
	var calls atomic.Int32
	c := NewCache("test", func(ctx context.Context, key string) (int32, error) {
		return calls.Add(1), nil
	})

	first, _ := c.Get(context.Background(), "x")
	c.Clear()
	second, _ := c.Get(context.Background(), "x")
	if first == second {
		t.Errorf("expected reload after Clear, got %d twice", first)
	}
}

func TestCacheCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	c := NewCache("test", func(ctx context.Context, key string) (string, error) {
		<-release
		return "late", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	close(release)
	v, err := c.Get(context.Background(), "k")
	if err != nil || v != "late" {
		t.Errorf("Get after cancel = %q, %v", v, err)
	}
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "constituencies.json"), []byte(`{"1":{"name":"A"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	f := &DirFetcher{Root: dir}

	data, err := f.Fetch(context.Background(), "constituencies.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty payload")
	}

	_, err = f.Fetch(context.Background(), "missing.json")
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}

	_, err = f.Fetch(context.Background(), "../outside.json")
	if !IsNotFound(err) {
		t.Errorf("expected escape to be rejected, got %v", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/elections-2021.json":
			w.Write([]byte(`{"year":2021}`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/data", time.Second)
	if _, ok := f.(*HTTPFetcher); !ok {
		t.Fatalf("expected HTTPFetcher, got %T", f)
	}

	data, err := f.Fetch(context.Background(), "elections-2021.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"year":2021}` {
		t.Errorf("payload = %s", data)
	}

	_, err = f.Fetch(context.Background(), "elections-1999.json")
	re, ok := AsError(err)
	if !ok || re.Status != http.StatusNotFound || re.Resource != "elections-1999.json" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestFetchDecodeParseFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	load := FetchDecode(&DirFetcher{Root: dir}, JSON[map[string]any])
	c := NewCache("json", load)

	_, err := c.Get(context.Background(), "bad.json")
	re, ok := AsError(err)
	if !ok || re.Status != StatusParse {
		t.Fatalf("expected parse error, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("parse failure must not be cached")
	}
}
