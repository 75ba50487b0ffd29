package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/barkeep/internal/http/respond"
	"github.com/MrJamesThe3rd/barkeep/internal/search"
)

type Handler struct {
	svc *search.Service
}

func NewHandler(svc *search.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.search)
}

type resultResponse struct {
	Table string `json:"table"`
	ID    string `json:"id"`
	Label string `json:"label"`
	Route string `json:"route"`
}

type searchResponse struct {
	Query   string           `json:"query"`
	Results []resultResponse `json:"results"`
	Failed  []string         `json:"failed,omitempty"`
}

// search always answers 200; tables that failed are listed in "failed".
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Search(r.Context(), r.URL.Query().Get("q"))

	resp := searchResponse{
		Query:   res.Query,
		Results: make([]resultResponse, 0, len(res.Items)),
		Failed:  res.Failed,
	}
	for _, it := range res.Items {
		resp.Results = append(resp.Results, resultResponse(it))
	}

	respond.JSON(w, http.StatusOK, resp)
}
