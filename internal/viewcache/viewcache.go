// Package viewcache caches successful GET responses in Redis per request path
// and query, and drops every cached variant of a path on demand.
package viewcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "view:"
	setPrefix = "view:paths:"
	genPrefix = "view:gen:"
	fillLock  = 5 * time.Second
)

type entry struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Cache is safe to use with a nil client, in which case it does nothing.
type Cache struct {
	rdb    *redis.Client
	locker *redislock.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	c := &Cache{rdb: rdb, ttl: ttl, logger: logger}
	if rdb != nil {
		c.locker = redislock.New(rdb)
	}

	return c
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// cleanPath makes "/orders/" and "/orders" share cache entries.
func cleanPath(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}

	return path
}

func viewKey(path, rawQuery string) string {
	return keyPrefix + cleanPath(path) + "?" + rawQuery
}

func pathSet(path string) string {
	return setPrefix + cleanPath(path)
}

// genKey counts invalidations of path. A fill only stores its body if the
// count did not move while the handler ran.
func genKey(path string) string {
	return genPrefix + cleanPath(path)
}

var errStale = errors.New("view invalidated during fill")

// Middleware serves cached GET responses and stores fresh 200 responses.
// Only one request at a time fills a given key; concurrent misses are served
// uncached. A response rendered before an Invalidate of its path is never
// stored.
func (c *Cache) Middleware(next http.Handler) http.Handler {
	if !c.enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := viewKey(r.URL.Path, r.URL.RawQuery)

		if e, ok := c.lookup(ctx, key); ok {
			w.Header().Set("Content-Type", e.ContentType)
			w.Header().Set("X-Cache", "HIT")
			_, _ = w.Write(e.Body)

			return
		}

		lock, err := c.locker.Obtain(ctx, "lock:"+key, fillLock, nil)
		if err != nil {
			if !errors.Is(err, redislock.ErrNotObtained) {
				c.logger.Warn("view cache lock failed", "key", key, "error", err)
			}

			next.ServeHTTP(w, r)

			return
		}
		defer lock.Release(context.WithoutCancel(ctx))

		gen, err := c.generation(ctx, r.URL.Path)
		if err != nil {
			c.logger.Warn("view cache read failed", "key", key, "error", err)
			next.ServeHTTP(w, r)

			return
		}

		var body bytes.Buffer

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Cache", "MISS")
		ww.Tee(&body)

		next.ServeHTTP(ww, r)

		if ww.Status() != http.StatusOK {
			return
		}

		e := entry{ContentType: ww.Header().Get("Content-Type"), Body: body.Bytes()}
		err = c.store(context.WithoutCancel(ctx), r.URL.Path, key, gen, e)
		switch {
		case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
			c.logger.Debug("view cache fill discarded", "key", key)
		case err != nil:
			c.logger.Warn("view cache store failed", "key", key, "error", err)
		}
	})
}

func (c *Cache) lookup(ctx context.Context, key string) (entry, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("view cache read failed", "key", key, "error", err)
		}

		return entry{}, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return entry{}, false
	}

	return e, true
}

func (c *Cache) generation(ctx context.Context, path string) (int64, error) {
	n, err := c.rdb.Get(ctx, genKey(path)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}

	return n, nil
}

// store writes e only while path is still at generation gen. The WATCH makes
// an Invalidate landing between the check and the write abort the write.
func (c *Cache) store(ctx context.Context, path, key string, gen int64, e entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey(path)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if cur != gen {
			return errStale
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, raw, c.ttl)
			p.SAdd(ctx, pathSet(path), key)
			p.Expire(ctx, pathSet(path), c.ttl)

			return nil
		})

		return err
	}, genKey(path))
}

// Invalidate deletes every cached query variant of path and turns away
// fills of path that started before it.
func (c *Cache) Invalidate(ctx context.Context, path string) error {
	if !c.enabled() {
		return nil
	}

	if err := c.rdb.Incr(ctx, genKey(path)).Err(); err != nil {
		return fmt.Errorf("bumping generation of %s: %w", path, err)
	}

	keys, err := c.rdb.SMembers(ctx, pathSet(path)).Result()
	if err != nil {
		return fmt.Errorf("listing cached views of %s: %w", path, err)
	}

	if err := c.rdb.Del(ctx, append(keys, pathSet(path))...).Err(); err != nil {
		return fmt.Errorf("deleting cached views of %s: %w", path, err)
	}

	return nil
}
