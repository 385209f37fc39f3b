package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sevasetu/assistant/internal/domain"
	"github.com/sevasetu/assistant/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeServiceError maps engine errors to HTTP statuses. The session is
// left in its last-known-good state by the engine, so every non-2xx here
// is safe to retry by re-invoking the same operation.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *domain.ServiceError
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSchemeNotCandidate):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTransitionInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyInput),
		errors.Is(err, service.ErrWrongStage),
		errors.Is(err, service.ErrNoSchemeSelected),
		errors.Is(err, service.ErrNotIneligible),
		errors.Is(err, service.ErrNoDocuments),
		errors.Is(err, service.ErrMissingDocumentType),
		errors.Is(err, service.ErrMissingFile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &svcErr):
		writeError(w, http.StatusBadGateway, svcErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
