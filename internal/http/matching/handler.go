package matching

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/barkeep/internal/http/respond"
	"github.com/MrJamesThe3rd/barkeep/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Item       string `json:"item"`
	Department string `json:"department"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	item := r.URL.Query().Get("item")
	if item == "" {
		http.Error(w, "item query parameter is required", http.StatusBadRequest)
		return
	}

	department, err := h.svc.Suggest(r.Context(), item)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{Item: item, Department: department})
}

type learnRequest struct {
	ItemPattern string `json:"item_pattern"`
	Department  string `json:"department"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Learn(r.Context(), req.ItemPattern, req.Department); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
