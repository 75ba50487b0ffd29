package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	searchHandler "github.com/MrJamesThe3rd/barkeep/internal/http/search"
	"github.com/MrJamesThe3rd/barkeep/internal/search"
)

type tableQuerier map[string][]search.Row

func (q tableQuerier) Match(_ context.Context, src search.Source, _ string) ([]search.Row, error) {
	if src.Table == "user" {
		return nil, errors.New("permission denied")
	}

	return q[src.Table], nil
}

type response struct {
	Query   string `json:"query"`
	Results []struct {
		Table string `json:"table"`
		ID    string `json:"id"`
		Route string `json:"route"`
	} `json:"results"`
	Failed []string `json:"failed"`
}

func get(t *testing.T, q search.Querier, target string) response {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	searchHandler.NewHandler(search.NewService(q, time.Second, logger)).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

func TestHandler_Search(t *testing.T) {
	q := tableQuerier{
		"order":   {{ID: "17", Label: "Pending"}},
		"product": {{ID: "3", Label: "Cola"}},
	}

	body := get(t, q, "/?q=pen")

	assert.Equal(t, "pen", body.Query)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "product", body.Results[0].Table)
	assert.Equal(t, "/product/3", body.Results[0].Route)
	assert.Equal(t, "order", body.Results[1].Table)
	assert.Equal(t, "/orders/details/17", body.Results[1].Route)
	assert.Equal(t, []string{"user"}, body.Failed)
}

func TestHandler_SearchBlank(t *testing.T) {
	body := get(t, tableQuerier{}, "/?q=%20%20")

	assert.Empty(t, body.Query)
	assert.NotNil(t, body.Results)
	assert.Empty(t, body.Results)
	assert.Empty(t, body.Failed)
}
