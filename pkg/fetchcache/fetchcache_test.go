package fetchcache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marathonfantasy/pkg/fetchcache"
)

// rankingsServer counts requests and answers conditional requests with 304
// until its payload version changes.
type rankingsServer struct {
	calls   atomic.Int64
	etag    atomic.Value
	payload atomic.Value
}

func newRankingsServer() *rankingsServer {
	s := &rankingsServer{}
	s.etag.Store(`"v1"`)
	s.payload.Store(`{"standings":[1,2,3]}`)
	return s
}

func (s *rankingsServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		etag := s.etag.Load().(string)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		_, _ = w.Write([]byte(s.payload.Load().(string)))
	})
}

func TestGetOrFetch(t *testing.T) {
	t.Parallel()

	t.Run("fresh entry needs one network call", func(t *testing.T) {
		t.Parallel()

		backend := newRankingsServer()
		srv := httptest.NewServer(backend.handler())
		t.Cleanup(srv.Close)

		fc := fetchcache.New()
		ctx := context.Background()

		first, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)
		second, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.EqualValues(t, 1, backend.calls.Load())
	})

	t.Run("stale entry revalidates and 304 keeps payload", func(t *testing.T) {
		t.Parallel()

		backend := newRankingsServer()
		srv := httptest.NewServer(backend.handler())
		t.Cleanup(srv.Close)

		now := time.Now()
		clock := &now
		fc := fetchcache.New(
			fetchcache.WithFreshness(time.Minute),
			fetchcache.WithClock(func() time.Time { return *clock }),
		)
		ctx := context.Background()

		first, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)

		// Age the entry past the freshness window
		aged := now.Add(2 * time.Minute)
		clock = &aged

		second, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)

		assert.Equal(t, first, second, "304 must not replace the stored payload")
		assert.EqualValues(t, 2, backend.calls.Load(), "stale entry issues a conditional call")

		// Timestamp was refreshed by the 304, so the next read is cache-only
		_, err = fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, backend.calls.Load())
	})

	t.Run("changed payload replaces entry", func(t *testing.T) {
		t.Parallel()

		backend := newRankingsServer()
		srv := httptest.NewServer(backend.handler())
		t.Cleanup(srv.Close)

		now := time.Now()
		clock := &now
		fc := fetchcache.New(
			fetchcache.WithFreshness(time.Minute),
			fetchcache.WithClock(func() time.Time { return *clock }),
		)
		ctx := context.Background()

		_, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)

		backend.etag.Store(`"v2"`)
		backend.payload.Store(`{"standings":[3,2,1]}`)
		aged := now.Add(2 * time.Minute)
		clock = &aged

		updated, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"standings":[3,2,1]}`, string(updated))
	})

	t.Run("skip cache bypasses read and write", func(t *testing.T) {
		t.Parallel()

		backend := newRankingsServer()
		srv := httptest.NewServer(backend.handler())
		t.Cleanup(srv.Close)

		fc := fetchcache.New()
		ctx := context.Background()

		_, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{SkipCache: true})
		require.NoError(t, err)
		_, err = fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{SkipCache: true})
		require.NoError(t, err)

		assert.EqualValues(t, 2, backend.calls.Load())

		// Nothing was written to the cache either
		_, err = fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, backend.calls.Load())
	})

	t.Run("error response leaves cache untouched", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		fc := fetchcache.New()
		_, err := fc.GetOrFetch(context.Background(), srv.URL, fetchcache.FetchOptions{})
		assert.ErrorIs(t, err, fetchcache.ErrFetchFailed)
	})

	t.Run("invalidate forces a fresh fetch", func(t *testing.T) {
		t.Parallel()

		backend := newRankingsServer()
		srv := httptest.NewServer(backend.handler())
		t.Cleanup(srv.Close)

		fc := fetchcache.New()
		ctx := context.Background()

		_, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)

		fc.Invalidate(srv.URL)

		_, err = fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, backend.calls.Load())
	})

	t.Run("explicit key", func(t *testing.T) {
		t.Parallel()

		backend := newRankingsServer()
		srv := httptest.NewServer(backend.handler())
		t.Cleanup(srv.Close)

		fc := fetchcache.New()
		ctx := context.Background()

		_, err := fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{Key: "rankings"})
		require.NoError(t, err)
		_, err = fc.GetOrFetch(ctx, srv.URL+"?page=1", fetchcache.FetchOptions{Key: "rankings"})
		require.NoError(t, err)

		assert.EqualValues(t, 1, backend.calls.Load())

		fc.InvalidateAll()
		_, err = fc.GetOrFetch(ctx, srv.URL, fetchcache.FetchOptions{Key: "rankings"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, backend.calls.Load())
	})
}
