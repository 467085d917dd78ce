package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"jobcard-backend/internal/config"
	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/services"
	"jobcard-backend/internal/sms"
	"jobcard-backend/internal/store"
	"jobcard-backend/internal/whatsapp"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, services.ErrDraftNotFound),
		errors.Is(err, services.ErrUnknownStage):
		return http.StatusNotFound
	case errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, services.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, jobcard.ErrValidation),
		errors.Is(err, jobcard.ErrUnknownField),
		errors.Is(err, jobcard.ErrUnknownPartRow),
		errors.Is(err, jobcard.ErrInvalidValue),
		errors.Is(err, jobcard.ErrInvalidStatus),
		errors.Is(err, jobcard.ErrInvalidPriority),
		errors.Is(err, jobcard.ErrInvalidStageStatus),
		errors.Is(err, jobcard.ErrNoEstimate),
		errors.Is(err, services.ErrInvalidImport),
		errors.Is(err, services.ErrConfirmationRequired),
		errors.Is(err, services.ErrManagedValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, whatsapp.ErrNotConfigured),
		errors.Is(err, sms.ErrNotConfigured),
		errors.Is(err, config.ErrBackupNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var verr *jobcard.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	if status == http.StatusInternalServerError {
		log.Printf("[Handler] %s %s failed: %v", r.Method, r.URL.Path, err)
		resp.Error = "Internal server error"
	}
	writeJSON(w, status, resp)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// confirmed reads the confirm query flag of destructive requests.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return n, nil
}

func attachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(data)
}
