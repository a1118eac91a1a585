package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/attrition-cli/internal/analysis"
	"github.com/KaramelBytes/attrition-cli/internal/ingest"
	"github.com/KaramelBytes/attrition-cli/internal/session"
	"github.com/KaramelBytes/attrition-cli/internal/submission"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, msg string, details any) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: msg, Details: details}
}

// toAPIError maps domain errors onto HTTP responses.
func toAPIError(err error) *APIError {
	var (
		apiErr *APIError
		ve     *submission.ValidationError
		pe     *ingest.ParseError
		se     *analysis.SelectionError
		mbe    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &ve):
		return newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "Please fill in all required fields and upload a file.", ve.Fields)
	case errors.As(err, &pe):
		return newAPIError(http.StatusUnprocessableEntity, "UNREADABLE_FILE", pe.Error(), map[string]string{"filename": pe.Filename})
	case errors.As(err, &se):
		return newAPIError(http.StatusUnprocessableEntity, "INVALID_SELECTION", se.Error(), map[string]string{"dimension": se.Dimension, "reason": se.Reason})
	case errors.Is(err, session.ErrNoDataset):
		return newAPIError(http.StatusNotFound, "NO_DATASET", "No dataset has been uploaded yet.", nil)
	case errors.As(err, &mbe):
		return newAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload exceeds the maximum allowed size.", map[string]int64{"max_bytes": mbe.Limit})
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", "The request could not be completed.", nil)
	}
}
