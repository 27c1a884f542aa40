package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error onto the HTTP error contract.
// Anything unexpected is logged and reported as a generic 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger logging.Logger, fallback string, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Reason)
	case errors.Is(err, common.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, common.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrCapacityExceeded):
		respondError(w, http.StatusConflict, "All 5 envelopes are sealed for this year.")
	default:
		logger.Error(r.Context(), fallback, "error", err, "path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
