package finance

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/http/respond"
)

type Handler struct {
	svc *finance.Service
}

func NewHandler(svc *finance.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router, cached func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(cached)
		r.Get("/records", h.listRecords)
		r.Get("/expenses", h.listExpenses)
		r.Get("/ledger", h.ledger)
		r.Get("/cashflow", h.cashFlow)
		r.Get("/payment-methods", h.paymentMethods)
	})

	r.Post("/records", h.createRecord)
	r.Post("/expenses", h.createExpense)
}

// parseFilter reads start_date, end_date (YYYY-MM-DD, end inclusive) and submitted_by.
func parseFilter(r *http.Request) (finance.Filter, bool) {
	q := r.URL.Query()
	filter := finance.Filter{}

	if s := q.Get("submitted_by"); s != "" {
		filter.SubmittedBy = new(s)
	}

	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, false
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, false
		}

		filter.EndDate = new(t.Add(24*time.Hour - time.Nanosecond))
	}

	return filter, true
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(r)
	if !ok {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	records, err := h.svc.ListRecords(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toRecordResponse(rec))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(r)
	if !ok {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	expenses, err := h.svc.ListExpenses(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, toExpenseResponse(e))
	}

	respond.JSON(w, http.StatusOK, resp)
}

type createRecordRequest struct {
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	AmountPaid      decimal.Decimal     `json:"amount_paid"`
	AmountAvailable decimal.Decimal     `json:"amount_available"`
	PaymentMode     finance.PaymentMode `json:"payment_mode"`
	SubmittedBy     string              `json:"submitted_by"`
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.svc.CreateRecord(r.Context(), finance.CreateRecordParams{
		TotalAmount:     req.TotalAmount,
		AmountPaid:      req.AmountPaid,
		AmountAvailable: req.AmountAvailable,
		PaymentMode:     req.PaymentMode,
		SubmittedBy:     req.SubmittedBy,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toRecordResponse(rec))
}

type createExpenseRequest struct {
	Item        string          `json:"item"`
	AmountSpent decimal.Decimal `json:"amount_spent"`
	Department  string          `json:"department"`
	SubmittedBy string          `json:"submitted_by"`
	Date        time.Time       `json:"date"`
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.CreateExpense(r.Context(), finance.CreateExpenseParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(r)
	if !ok {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	summary, err := h.svc.Ledger(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ledgerResponse{
		SubmittedBy:          h.svc.LedgerTag(),
		TotalAmountPaid:      summary.TotalAmountPaid,
		TotalAmountAvailable: summary.TotalAmountAvailable,
		TotalExpenses:        summary.TotalExpenses,
		BalanceForward:       summary.BalanceForward,
		LastUpdated:          summary.LastUpdated,
	})
}

func (h *Handler) cashFlow(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(r)
	if !ok {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	g := finance.Granularity(r.URL.Query().Get("granularity"))
	if g == "" {
		g = finance.GranularityMonth
	}

	points, err := h.svc.CashFlow(r.Context(), g, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]trendResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, trendResponse{Date: p.Date, Income: p.Income, Expenses: p.Expenses})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) paymentMethods(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(r)
	if !ok {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	d, err := h.svc.PaymentDistribution(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := distributionResponse{
		Modes:        make([]modeTotal, 0, len(finance.PaymentModes)),
		Unrecognized: d.Unrecognized,
	}
	for _, m := range finance.PaymentModes {
		resp.Modes = append(resp.Modes, modeTotal{Mode: m, Amount: d.ByMode[m]})
	}

	respond.JSON(w, http.StatusOK, resp)
}
