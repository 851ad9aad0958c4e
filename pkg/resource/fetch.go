package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/metrics"
)

// Fetcher retrieves a named static resource.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// NewFetcher returns an HTTP fetcher for http(s) sources and a directory
// fetcher otherwise.
func NewFetcher(source string, timeout time.Duration) Fetcher {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &HTTPFetcher{
			BaseURL: source,
			Client:  &http.Client{Timeout: timeout},
		}
	}
	return &DirFetcher{Root: source}
}

// DirFetcher reads resources from a local directory.
type DirFetcher struct {
	Root string
}

// Path returns the file path backing name.
func (f *DirFetcher) Path(name string) string {
	return filepath.Join(f.Root, filepath.FromSlash(name))
}

// Fetch reads Root/name.
func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	defer metrics.Timer(metrics.Fetch)()
	if err := ctx.Err(); err != nil {
		return nil, &Error{Resource: name, Status: StatusTransport, Err: err}
	}
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return nil, &Error{Resource: name, Status: StatusNotFound, Err: errors.New("resource name escapes data directory")}
	}

	data, err := os.ReadFile(f.Path(name))
	if err != nil {
		status := StatusTransport
		if errors.Is(err, fs.ErrNotExist) {
			status = StatusNotFound
		}
		return nil, &Error{Resource: name, Status: status, Err: err}
	}
	debug.Log("resource: read %s (%d bytes)", name, len(data))
	return data, nil
}

// HTTPFetcher retrieves resources relative to a base URL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// Fetch performs GET BaseURL/name. Any non-2xx status is a failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	defer metrics.Timer(metrics.Fetch)()

	u, err := url.JoinPath(f.BaseURL, name)
	if err != nil {
		return nil, &Error{Resource: name, Status: StatusTransport, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Resource: name, Status: StatusTransport, Err: err}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Resource: name, Status: StatusTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Resource: name, Status: resp.StatusCode, Err: fmt.Errorf("GET %s: %s", u, resp.Status)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Resource: name, Status: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	debug.Log("resource: GET %s -> %d (%d bytes)", u, resp.StatusCode, len(data))
	return data, nil
}
