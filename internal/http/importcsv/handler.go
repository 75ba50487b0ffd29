package importcsv

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/barkeep/internal/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/http/respond"
	"github.com/MrJamesThe3rd/barkeep/internal/importer"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc  *importer.Service
	financeSvc *finance.Service
}

func NewHandler(importSvc *importer.Service, financeSvc *finance.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		financeSvc: financeSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importSheet)
	r.Post("/confirm", h.confirmImport)
}

type expenseResponse struct {
	ID          int64           `json:"id"`
	Item        string          `json:"item"`
	AmountSpent decimal.Decimal `json:"amount_spent"`
	Department  string          `json:"department,omitempty"`
	SubmittedBy string          `json:"submitted_by"`
	Date        time.Time       `json:"date"`
}

type importSuccessResponse struct {
	Imported int               `json:"imported"`
	Expenses []expenseResponse `json:"expenses"`
}

type paramsDTO struct {
	Item        string          `json:"item"`
	AmountSpent decimal.Decimal `json:"amount_spent"`
	Department  string          `json:"department"`
	SubmittedBy string          `json:"submitted_by"`
	Date        time.Time       `json:"date"`
}

type conflictDTO struct {
	Incoming paramsDTO       `json:"incoming"`
	Existing expenseResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []paramsDTO   `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
}

type confirmRequest struct {
	Params []paramsDTO `json:"params"`
}

// importSheet answers 201 with the inserted expenses, or 409 with the rows
// that already exist and the ones that do not. Nothing is inserted on 409;
// the client resubmits the rows it wants through /confirm.
func (h *Handler) importSheet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatSheet
	}

	submitter := r.FormValue("submitted_by")
	if submitter == "" {
		submitter = h.financeSvc.LedgerTag()
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(r.Context(), format, file, submitter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.financeSvc.ImportExpenses(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]paramsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, paramsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: paramsDTO(c.Incoming),
				Existing: toExpenseResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]finance.CreateExpenseParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, finance.CreateExpenseParams(p))
	}

	expenses, err := h.financeSvc.CreateExpenses(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(expenses))
}

func toSuccessResponse(expenses []*finance.Expense) importSuccessResponse {
	responses := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		responses = append(responses, toExpenseResponse(e))
	}

	return importSuccessResponse{
		Imported: len(expenses),
		Expenses: responses,
	}
}

func toExpenseResponse(e *finance.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Item:        e.Item,
		AmountSpent: e.AmountSpent,
		Department:  e.Department,
		SubmittedBy: e.SubmittedBy,
		Date:        e.Date,
	}
}
