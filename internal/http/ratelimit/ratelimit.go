// Package ratelimit throttles API clients by IP.
package ratelimit

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const storePrefix = "ratelimit"

// New builds the middleware for a formatted rate such as "300-M". Counters
// live in Redis when rdb is set so that every API instance shares them.
func New(formatted string, rdb *redis.Client) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parsing rate %q: %w", formatted, err)
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: storePrefix})
	if rdb != nil {
		store, err = sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: storePrefix})
		if err != nil {
			return nil, fmt.Errorf("creating redis rate store: %w", err)
		}
	}

	return stdlib.NewMiddleware(limiter.New(store, rate)).Handler, nil
}
