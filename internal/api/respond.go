package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine errors to HTTP responses.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if prior, ok := assessment.IsAlreadyAttempted(err); ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   "test already attempted",
			"session": prior,
		})
		return
	}

	switch {
	case errors.Is(err, assessment.ErrTestNotFound),
		errors.Is(err, assessment.ErrQuestionNotFound),
		errors.Is(err, assessment.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, assessment.ErrSessionTerminal):
		writeError(w, http.StatusConflict, assessment.ErrSessionTerminal.Error())
	case errors.Is(err, assessment.ErrConflict):
		writeError(w, http.StatusConflict, assessment.ErrConflict.Error())
	default:
		logging.WithContext(r.Context()).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
