package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	barkeepHttp "github.com/MrJamesThe3rd/barkeep/internal/http"
	financeHandler "github.com/MrJamesThe3rd/barkeep/internal/http/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/viewcache"
)

func TestNew_FinanceWriteRefreshesCachedViews(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := slog.New(slog.DiscardHandler)
	views := viewcache.New(rdb, time.Minute, logger)

	ctrl := gomock.NewController(t)
	repo := finance.NewMockRepository(ctrl)

	records := []*finance.Record{{
		ID:              1,
		AmountPaid:      decimal.NewFromInt(100),
		AmountAvailable: decimal.NewFromInt(500),
		PaymentMode:     finance.ModeCash,
		SubmittedBy:     "Cashier",
	}}

	repo.EXPECT().ListRecords(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, finance.Filter) ([]*finance.Record, error) {
			return slices.Clone(records), nil
		}).AnyTimes()
	repo.EXPECT().ListExpenses(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	repo.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r *finance.Record) error {
			r.ID = int64(len(records) + 1)
			r.CreatedAt = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
			records = append(records, r)

			return nil
		})

	hs := handlers()
	hs.Finance = financeHandler.NewHandler(finance.NewService(repo, views, "Cashier", logger))

	router := barkeepHttp.New(hs, barkeepHttp.Options{Cached: views.Middleware})

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

		return rec
	}

	ledger := func() (string, decimal.Decimal) {
		rec := serve(http.MethodGet, "/api/v1/finance/ledger", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			TotalPaid decimal.Decimal `json:"total_amount_paid"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

		return rec.Header().Get("X-Cache"), body.TotalPaid
	}

	state, paid := ledger()
	assert.Equal(t, "MISS", state)
	assert.Equal(t, "100", paid.String())

	state, paid = ledger()
	assert.Equal(t, "HIT", state)
	assert.Equal(t, "100", paid.String())

	assert.Equal(t, "MISS", serve(http.MethodGet, "/api/v1/finance/payment-methods", "").Header().Get("X-Cache"))
	assert.Equal(t, "HIT", serve(http.MethodGet, "/api/v1/finance/payment-methods", "").Header().Get("X-Cache"))

	created := serve(http.MethodPost, "/api/v1/finance/records",
		`{"total_amount":"50","amount_paid":"50","amount_available":"50","payment_mode":"Bank","submitted_by":"Cashier"}`)
	require.Equal(t, http.StatusCreated, created.Code)

	state, paid = ledger()
	assert.Equal(t, "MISS", state)
	assert.Equal(t, "150", paid.String())

	assert.Equal(t, "MISS", serve(http.MethodGet, "/api/v1/finance/payment-methods", "").Header().Get("X-Cache"))
}
