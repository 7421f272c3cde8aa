// Package fetcher downloads remote filter lists over HTTP with retries,
// adapted from the teacher's own fetcher to work in terms of abpcore's
// config.FilterList rather than a bare URL.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quailmark/abpcore/internal/config"
)

// Fetcher downloads filter lists.
type Fetcher struct {
	client  *http.Client
	retries int
}

// New creates a Fetcher from HTTP config.
func New(cfg config.HTTPConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retries := cfg.Retries
	if retries == 0 {
		retries = 3
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		retries: retries,
	}
}

// FetchList downloads a configured filter list and rejects an empty body,
// since an empty response is never a valid filter list and would otherwise
// silently load zero filters. Errors name the list so a multi-list load
// failure is traceable back to its source.
func (f *Fetcher) FetchList(ctx context.Context, list config.FilterList) ([]byte, error) {
	data, err := f.Fetch(ctx, list.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching list %q: %w", list.Name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("list %q: empty response body", list.Name)
	}
	return data, nil
}

// Fetch downloads content from a URL with exponential backoff between
// retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for i := 0; i < f.retries; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s, ...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		data, err := f.doFetch(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed after %d retries: %w", f.retries, lastErr)
}

func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "abpcore/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
