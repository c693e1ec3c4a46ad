// Package fetchcache is a process-local HTTP response cache with a fixed
// freshness window and ETag-based conditional revalidation. It backs client
// tooling that polls the API: fresh entries are served without network
// access, stale entries revalidate with If-None-Match, and a 304 refreshes
// the entry without re-transferring the payload.
package fetchcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrFetchFailed wraps non-success transport responses (other than 304).
var ErrFetchFailed = errors.New("fetchcache: fetch failed")

// DefaultFreshness is the window during which a cached entry is served
// without any network access.
const DefaultFreshness = 5 * time.Minute

type entry struct {
	data      []byte
	etag      string
	fetchedAt time.Time
}

// Client caches GET responses keyed by URL (or an explicit key). It holds no
// persistence and shares nothing across processes.
type Client struct {
	httpClient *http.Client
	freshness  time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying transport, ignoring nil clients.
func WithHTTPClient(c *http.Client) Option {
	return func(fc *Client) {
		if c != nil {
			fc.httpClient = c
		}
	}
}

// WithFreshness overrides the freshness window.
func WithFreshness(d time.Duration) Option {
	return func(fc *Client) {
		if d > 0 {
			fc.freshness = d
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(fc *Client) {
		if now != nil {
			fc.now = now
		}
	}
}

// New creates a cache-backed fetch client.
func New(opts ...Option) *Client {
	fc := &Client{
		httpClient: http.DefaultClient,
		freshness:  DefaultFreshness,
		now:        time.Now,
		entries:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(fc)
	}
	return fc
}

// FetchOptions adjust a single GetOrFetch call.
type FetchOptions struct {
	// Key overrides the cache key; defaults to the request URL.
	Key string
	// SkipCache bypasses both cache read and write for this call. Used for
	// data that must always be current, e.g. live results.
	SkipCache bool
}

// GetOrFetch returns the body for url, consulting the cache first.
func (fc *Client) GetOrFetch(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	if opts.SkipCache {
		data, _, err := fc.fetch(ctx, url, "")
		return data, err
	}

	key := opts.Key
	if key == "" {
		key = url
	}

	fc.mu.Lock()
	cached, ok := fc.entries[key]
	fc.mu.Unlock()

	if ok && fc.now().Sub(cached.fetchedAt) < fc.freshness {
		return cached.data, nil
	}

	var etag string
	if ok {
		etag = cached.etag
	}

	data, newTag, err := fc.fetch(ctx, url, etag)
	if err != nil {
		return nil, err
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if data == nil && ok {
		// 304: the stored payload is still current, only the clock advances
		cached.fetchedAt = fc.now()
		return cached.data, nil
	}

	fc.entries[key] = &entry{data: data, etag: newTag, fetchedAt: fc.now()}
	return data, nil
}

// Invalidate removes a single cached entry. Call it after any write to the
// corresponding resource so the next read is forced fresh.
func (fc *Client) Invalidate(key string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	delete(fc.entries, key)
}

// InvalidateAll clears the entire cache.
func (fc *Client) InvalidateAll() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.entries = make(map[string]*entry)
}

// fetch performs the network call. A nil data with nil error means the
// conditional request returned 304 Not Modified.
func (fc *Client) fetch(ctx context.Context, url, etag string) (data []byte, newTag string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := fc.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified {
		return nil, "", nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: %s returned %d", ErrFetchFailed, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return body, resp.Header.Get("ETag"), nil
}
