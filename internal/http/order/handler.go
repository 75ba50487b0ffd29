package order

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/barkeep/internal/http/respond"
	"github.com/MrJamesThe3rd/barkeep/internal/order"
)

type Handler struct {
	svc *order.Service
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the read routes. cached wraps them, typically with the view cache.
func (h *Handler) Routes(r chi.Router, cached func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(cached)
		r.Get("/", h.list)
		r.Get("/monthly", h.monthly)
		r.Get("/{id}", h.get)
	})

	r.Patch("/{id}/status", h.updateStatus)
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := order.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(s)
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		filter.Limit = limit
	}

	orders, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(orders))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err, order.ErrNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(o))
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.MonthlyCounts(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]monthlyResponse, 0, len(buckets))
	for _, b := range buckets {
		resp = append(resp, monthlyResponse{Month: b.Month, Count: b.Count})
	}

	respond.JSON(w, http.StatusOK, resp)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		respond.Error(w, r, err, order.ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
