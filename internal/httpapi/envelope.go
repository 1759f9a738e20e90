package httpapi

import (
	"encoding/json"
	"net/http"

	"searoute/pkg/apperror"
	"searoute/pkg/logger"
)

// errorEnvelope is the JSON error shape of spec §6.
type errorEnvelope struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response body", "error", err)
	}
}

// writeError maps err onto the JSON error envelope and the matching HTTP
// status (spec §6's status table), using a generic 500 for errors that
// don't carry an apperror.Error.
func writeError(w http.ResponseWriter, requestID string, err error) {
	appErr, ok := err.(*apperror.Error)
	if !ok {
		appErr = apperror.Wrap(err, apperror.CodeInternal, "internal error")
	}

	writeJSON(w, appErr.HTTPStatus(), errorEnvelope{
		Error:     string(appErr.Code),
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: requestID,
	})
}
