// Package fetch is the byte-fetcher collaborator spec.md §1 describes:
// an HTTP client with a per-request timeout and retry, backed by a
// write-then-rename disk cache shared safely across concurrent runs
// (spec.md §5 "Shared resources"). No third-party retry/backoff library
// appears anywhere in the example corpus, so the retry loop is
// hand-rolled over net/http (see DESIGN.md).
package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/francegen/francegen/internal/ferr"
	"github.com/francegen/francegen/internal/logx"
)

const (
	defaultTimeout = 60 * time.Second
	maxAttempts    = 3
)

// Fetcher retrieves bytes over HTTP, caching successful responses to
// disk keyed by URL.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	subdir   string
}

// New builds a Fetcher that caches under cacheDir/subdir (spec.md §9
// "cache subdirs overpass/ and tiles/"). cacheDir may be empty, in
// which case responses are not cached to disk.
func New(cacheDir, subdir string) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: defaultTimeout},
		cacheDir: cacheDir,
		subdir:   subdir,
	}
}

// Get returns url's body, from cache if present, else over HTTP with up
// to maxAttempts tries and exponential backoff (spec.md §5 "per-request
// timeout... retry with exponential backoff (3 attempts)").
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if f.cacheDir != "" {
		if cached, ok := f.readCache(url); ok {
			return cached, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			logx.Warnf("retrying fetch of %s in %s (attempt %d/%d)", url, backoff, attempt+1, maxAttempts)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ferr.New(ferr.OverlayFetch, url, ctx.Err())
			}
		}

		body, err := f.attempt(ctx, url)
		if err == nil {
			if f.cacheDir != "" {
				f.writeCache(url, body)
			}
			return body, nil
		}
		lastErr = err
	}
	return nil, ferr.New(ferr.OverlayFetch, url, lastErr)
}

// Post behaves like Get but issues a POST with the given body (the
// Overpass API accepts queries via POST body).
func (f *Fetcher) Post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	cacheKey := url + "\n" + string(body)
	if f.cacheDir != "" {
		if cached, ok := f.readCache(cacheKey); ok {
			return cached, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ferr.New(ferr.OverlayFetch, url, ctx.Err())
			}
		}

		respBody, err := f.attemptPost(ctx, url, contentType, body)
		if err == nil {
			if f.cacheDir != "" {
				f.writeCache(cacheKey, respBody)
			}
			return respBody, nil
		}
		lastErr = err
	}
	return nil, ferr.New(ferr.OverlayFetch, url, lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return f.do(req)
}

func (f *Fetcher) attemptPost(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, newReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return f.do(req)
}

func (f *Fetcher) do(req *http.Request) ([]byte, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpStatusError(resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (f *Fetcher) cachePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(f.cacheDir, f.subdir, name)
}

func (f *Fetcher) readCache(key string) ([]byte, bool) {
	data, err := os.ReadFile(f.cachePath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// writeCache writes to a ".tmp" sibling then renames, safe against
// concurrent runs sharing a cache directory (spec.md §5).
func (f *Fetcher) writeCache(key string, data []byte) {
	path := f.cachePath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
	}
}

func newReader(data []byte) *bytes.Reader {
	return bytes.NewReader(data)
}

type statusError int

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", int(e))
}

func httpStatusError(code int) error {
	return statusError(code)
}
