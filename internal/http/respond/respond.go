// Package respond writes JSON bodies and maps service errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/barkeep/internal/validate"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes 400 for invalid input, 404 when err matches one of notFound,
// and 500 otherwise. Internal details are logged, not sent.
func Error(w http.ResponseWriter, r *http.Request, err error, notFound ...error) {
	if errors.Is(err, validate.ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, nf := range notFound {
		if errors.Is(err, nf) {
			http.Error(w, nf.Error(), http.StatusNotFound)
			return
		}
	}

	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
