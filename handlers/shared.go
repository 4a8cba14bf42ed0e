package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"github.com/gorilla/mux"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps domain errors onto HTTP statuses and writes a JSON error
// body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var invalid *models.InvalidTransactionError
	var phase *models.PhaseViolationError
	var capErr *models.CapViolationError
	switch {
	case models.IsNotFound(err):
		status = http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &capErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &phase):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// pathInt reads an integer path variable; ok is false when missing or
// malformed.
func pathInt(r *http.Request, name string) (int, bool) {
	raw, present := mux.Vars(r)[name]
	if !present {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryInt reads an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
