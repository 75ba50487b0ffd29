package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	barkeepHttp "github.com/MrJamesThe3rd/barkeep/internal/http"
	"github.com/MrJamesThe3rd/barkeep/internal/http/category"
	"github.com/MrJamesThe3rd/barkeep/internal/http/export"
	"github.com/MrJamesThe3rd/barkeep/internal/http/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/http/importcsv"
	"github.com/MrJamesThe3rd/barkeep/internal/http/matching"
	"github.com/MrJamesThe3rd/barkeep/internal/http/order"
	"github.com/MrJamesThe3rd/barkeep/internal/http/search"
)

func handlers() barkeepHttp.Handlers {
	return barkeepHttp.Handlers{
		Orders:     order.NewHandler(nil),
		Finance:    finance.NewHandler(nil),
		Categories: category.NewHandler(nil),
		Search:     search.NewHandler(nil),
		Import:     importcsv.NewHandler(nil, nil),
		Matching:   matching.NewHandler(nil),
		Export:     export.NewHandler(nil),
	}
}

func TestNew_APIMiddleware(t *testing.T) {
	var limited []string

	router := barkeepHttp.New(handlers(), barkeepHttp.Options{
		AllowedOrigins: []string{"http://admin.test"},
		RateLimit: func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				limited = append(limited, r.URL.Path)
				w.WriteHeader(http.StatusTooManyRequests)
			})
		},
	})

	for _, path := range []string{
		"/api/v1/orders/",
		"/api/v1/finance/ledger",
		"/api/v1/categories/",
		"/api/v1/search/",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, path)
	}

	assert.Len(t, limited, 4)
}

func TestNew_CORSPreflight(t *testing.T) {
	router := barkeepHttp.New(handlers(), barkeepHttp.Options{
		AllowedOrigins: []string{"http://admin.test"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders/1/status", nil)
	req.Header.Set("Origin", "http://admin.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://admin.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_UnknownRoute(t *testing.T) {
	router := barkeepHttp.New(handlers(), barkeepHttp.Options{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
