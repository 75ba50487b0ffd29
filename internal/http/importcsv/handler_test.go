package importcsv_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/http/importcsv"
	"github.com/MrJamesThe3rd/barkeep/internal/importer"
)

const sheetCSV = "Date;Item;Amount;Department\n03/06/2024;Lemons;12,50;\n"

type kitchenSuggester struct{}

func (kitchenSuggester) Suggest(context.Context, string) (string, error) {
	return "Kitchen", nil
}

func newRouter(t *testing.T) (http.Handler, *finance.MockRepository, *finance.MockImportTx) {
	ctrl := gomock.NewController(t)
	repo := finance.NewMockRepository(ctrl)
	tx := finance.NewMockImportTx(ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	views := finance.NewMockViewInvalidator(ctrl)
	views.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	r := chi.NewRouter()
	importcsv.NewHandler(
		importer.NewService(kitchenSuggester{}, logger),
		finance.NewService(repo, views, "Cashier", logger),
	).Routes(r)

	return r, repo, tx
}

func upload(t *testing.T, fields map[string]string, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if content != "" {
		fw, err := mw.CreateFormFile("file", "sheet.csv")
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func TestHandler_Import(t *testing.T) {
	june3 := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		fields     map[string]string
		content    string
		setupMock  func(repo *finance.MockRepository, tx *finance.MockImportTx)
		wantStatus int
		wantBody   string
	}{
		{
			name:    "imported with default submitter",
			content: sheetCSV,
			setupMock: func(repo *finance.MockRepository, tx *finance.MockImportTx) {
				repo.EXPECT().BeginImport(gomock.Any(), june3, june3).Return(tx, nil)
				tx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
				tx.EXPECT().CreateExpenses(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, expenses []*finance.Expense) error {
						require.Len(t, expenses, 1)
						assert.Equal(t, "Kitchen", expenses[0].Department)
						assert.Equal(t, "Cashier", expenses[0].SubmittedBy)

						return nil
					})
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"imported":1`,
		},
		{
			name:    "conflict",
			fields:  map[string]string{"submitted_by": "Ama"},
			content: sheetCSV,
			setupMock: func(repo *finance.MockRepository, tx *finance.MockImportTx) {
				repo.EXPECT().BeginImport(gomock.Any(), june3, june3).Return(tx, nil)
				tx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return([]*finance.Expense{
					{ID: 8, Item: "Lemons", AmountSpent: decimal.RequireFromString("12.5"), SubmittedBy: "Ama", Date: june3},
				}, nil)
				tx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			wantStatus: http.StatusConflict,
			wantBody:   `"conflicts":[{`,
		},
		{
			name:       "missing file",
			setupMock:  func(*finance.MockRepository, *finance.MockImportTx) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown format",
			fields:     map[string]string{"format": "ofx"},
			content:    sheetCSV,
			setupMock:  func(*finance.MockRepository, *finance.MockImportTx) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unrecognised layout",
			content:    "foo;bar\n1;2\n",
			setupMock:  func(*finance.MockRepository, *finance.MockImportTx) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo, tx := newRouter(t)
			tt.setupMock(repo, tx)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, upload(t, tt.fields, tt.content))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_Confirm(t *testing.T) {
	h, repo, tx := newRouter(t)

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(tx, nil)
	tx.EXPECT().CreateExpenses(gomock.Any(), gomock.Len(2)).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	body := `{"params":[
		{"item":"Lemons","amount_spent":"12.5","submitted_by":"Ama","date":"2024-06-03T00:00:00Z"},
		{"item":"Limes","amount_spent":"4","submitted_by":"Ama","date":"2024-06-04T00:00:00Z"}
	]}`

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/confirm", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Imported)
}
