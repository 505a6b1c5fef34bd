// Package httputil centralizes the wire envelope shared by every endpoint
// response, so success and error bodies stay consistent across handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "enroll/pkg/domain-errors"
)

// ErrorBody is the error half of the wire envelope. Field is one of the
// input field names or "general".
type ErrorBody struct {
	Message string `json:"message"`
	Field   string `json:"field"`
}

// ErrorResponse is the envelope for every non-2xx response.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// SuccessResponse is the envelope for every 2xx response carrying data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const internalMessage = "Internal server error"

// WriteJSON writes v with the given status and a JSON content type.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes the success envelope around data.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, SuccessResponse{Success: true, Message: message, Data: data})
}

// WriteError translates a domain error into the wire envelope. Internal
// errors never leak their message; everything else passes its message and
// field scope through.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorBody{Message: internalMessage, Field: dErrors.FieldGeneral}

	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) {
		body.Message = de.Message
		body.Field = dErrors.FieldOf(err)
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), ErrorResponse{Success: false, Error: body})
}
