package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/export"
	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/http/respond"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type entryResponse struct {
	Date        time.Time           `json:"date"`
	Kind        string              `json:"kind"`
	Description string              `json:"description"`
	Department  string              `json:"department,omitempty"`
	PaymentMode finance.PaymentMode `json:"payment_mode,omitempty"`
	SubmittedBy string              `json:"submitted_by"`
	Amount      decimal.Decimal     `json:"amount"`
}

type exportMetadataResponse struct {
	Entries []entryResponse `json:"entries"`
	Summary string          `json:"summary"`
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) (*export.Report, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	report, err := h.svc.Export(r.Context(), finance.Filter{StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return report, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}

	entries := make([]entryResponse, 0, len(report.Entries))
	for _, e := range report.Entries {
		entries = append(entries, entryResponse(e))
	}

	respond.JSON(w, http.StatusOK, exportMetadataResponse{
		Entries: entries,
		Summary: h.svc.Summary(report),
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"ledger_%s.zip\"", time.Now().Format("20060102")))

	if err := h.svc.WriteZip(w, report); err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
