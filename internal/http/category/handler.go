package category

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/barkeep/internal/category"
	"github.com/MrJamesThe3rd/barkeep/internal/http/respond"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ProductIDs []int64   `json:"product_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(c *category.Category) categoryResponse {
	ids := c.ProductIDs
	if ids == nil {
		ids = []int64{}
	}

	return categoryResponse{
		ID:         c.ID,
		Name:       c.Name,
		Slug:       c.Slug,
		ProductIDs: ids,
		CreatedAt:  c.CreatedAt,
	}
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toResponse(c))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err, category.ErrNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

type createRequest struct {
	Name       string  `json:"name"`
	ProductIDs []int64 `json:"product_ids"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{Name: req.Name, ProductIDs: req.ProductIDs})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

type updateRequest struct {
	Name string `json:"name"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Update(r.Context(), id, req.Name)
	if err != nil {
		respond.Error(w, r, err, category.ErrNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err, category.ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
