package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"eyerest/internal/core/model"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

// writeError maps the error taxonomy to a status code.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation    *model.ValidationError
		configuration *model.ConfigurationError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: validation.Field})
	case errors.As(err, &configuration):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: configuration.Field})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return &model.ValidationError{Field: "body", Reason: err.Error()}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &model.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
