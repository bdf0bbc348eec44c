package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/webmaek/aventus/errs"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// WriteJSON writes data with a 200 status.
func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONWithStatus(w, http.StatusOK, data)
}

func (r Responder) WriteJSONWithStatus(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Check if response is too large (e.g., > 10MB)
	const maxResponseSize = 10 * 1024 * 1024
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")
		status = http.StatusInternalServerError
		jsonData, _ = json.Marshal(ErrorResponse{Error: "Response too large", Status: "error"})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteNoContent answers 204 with an empty body.
func (r Responder) WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError reports err with the status errs.StatusOf assigns to it.
// Internal failures are logged and answered with a generic message.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	status := errs.StatusOf(err)

	if status >= http.StatusInternalServerError {
		var apiErr *errs.ApiErr
		event := r.logger.Error().Err(err).Int("status", status)
		if errors.As(err, &apiErr) {
			event = event.Str("fullError", apiErr.GetFullError())
		}
		event.Msg("request failed")

		message := "Internal Server Error"
		if status == http.StatusServiceUnavailable {
			message = err.Error()
		}
		r.WriteJSONWithStatus(w, status, ErrorResponse{Error: message, Status: "error"})
		return
	}

	response := ErrorResponse{Error: err.Error(), Status: "error"}
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		response.Field = apiErr.Field
		response.Details = apiErr.Details
	}
	r.WriteJSONWithStatus(w, status, response)
}
