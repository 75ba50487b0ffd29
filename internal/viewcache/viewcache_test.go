package viewcache_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/barkeep/internal/viewcache"
)

func setup(t *testing.T, status int) (*viewcache.Cache, http.Handler, *int) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"n":1}`))
	})

	c := viewcache.New(rdb, time.Minute, slog.New(slog.DiscardHandler))

	return c, c.Middleware(next), &calls
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestMiddleware_CachesAndInvalidates(t *testing.T) {
	c, h, calls := setup(t, http.StatusOK)

	first := get(h, "/api/v1/orders?status=Pending")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get(h, "/api/v1/orders?status=Pending")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, `{"n":1}`, second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))

	get(h, "/api/v1/orders")
	assert.Equal(t, 2, *calls)

	require.NoError(t, c.Invalidate(context.Background(), "/api/v1/orders"))

	get(h, "/api/v1/orders?status=Pending")
	get(h, "/api/v1/orders")
	assert.Equal(t, 4, *calls)
}

func TestMiddleware_InvalidateLeavesOtherPaths(t *testing.T) {
	c, h, calls := setup(t, http.StatusOK)

	get(h, "/api/v1/orders/7")
	require.NoError(t, c.Invalidate(context.Background(), "/api/v1/orders"))

	rec := get(h, "/api/v1/orders/7")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, *calls)
}

func TestMiddleware_SkipsErrorsAndWrites(t *testing.T) {
	_, h, calls := setup(t, http.StatusInternalServerError)

	get(h, "/api/v1/finance/ledger")
	get(h, "/api/v1/finance/ledger")
	assert.Equal(t, 2, *calls)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/finance/ledger", nil))
	assert.Equal(t, 3, *calls)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestDisabled(t *testing.T) {
	c := viewcache.New(nil, time.Minute, slog.New(slog.DiscardHandler))

	calls := 0
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))

	get(h, "/x")
	get(h, "/x")

	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Invalidate(context.Background(), "/x"))
}

func TestMiddleware_TrailingSlashSharesEntry(t *testing.T) {
	c, h, calls := setup(t, http.StatusOK)

	get(h, "/api/v1/orders/")
	assert.Equal(t, "HIT", get(h, "/api/v1/orders").Header().Get("X-Cache"))

	require.NoError(t, c.Invalidate(context.Background(), "/api/v1/orders"))

	get(h, "/api/v1/orders/")
	assert.Equal(t, 2, *calls)
}

func TestMiddleware_InvalidateDuringFillDiscardsBody(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	var status atomic.Value
	status.Store("status v1")

	rendering := make(chan struct{})
	release := make(chan struct{})

	var once sync.Once

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := status.Load().(string)
		once.Do(func() {
			close(rendering)
			<-release
		})

		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(body))
	})

	c := viewcache.New(rdb, time.Minute, slog.New(slog.DiscardHandler))
	h := c.Middleware(next)

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- get(h, "/api/v1/orders") }()

	<-rendering
	status.Store("status v2")
	require.NoError(t, c.Invalidate(context.Background(), "/api/v1/orders"))
	close(release)

	first := <-done
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "status v1", first.Body.String())

	second := get(h, "/api/v1/orders")
	assert.Equal(t, "MISS", second.Header().Get("X-Cache"))
	assert.Equal(t, "status v2", second.Body.String())

	third := get(h, "/api/v1/orders")
	assert.Equal(t, "HIT", third.Header().Get("X-Cache"))
	assert.Equal(t, "status v2", third.Body.String())
}
