// Package domainerrors defines the coded error type every layer above the
// stores speaks. Services attach a code (and optionally a field scope) at
// the point of failure; the transport edge translates the code to an HTTP
// status and the field scope into the wire envelope, so no layer in between
// inspects error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and metrics labels.
type Code string

const (
	// CodeBadRequest: the request itself is malformed (undecodable JSON,
	// missing structure).
	CodeBadRequest Code = "bad_request"
	// CodeValidation: a well-formed request failed a field rule.
	CodeValidation Code = "validation_failed"
	// CodeConflict: the request collides with existing state.
	CodeConflict Code = "conflict"
	// CodeNotFound: the referenced resource does not exist.
	CodeNotFound Code = "not_found"
	// CodeMethodNotAllowed: the route exists but not for this verb.
	CodeMethodNotAllowed Code = "method_not_allowed"
	// CodeInternal: an unexpected failure; details never reach the wire.
	CodeInternal Code = "internal"
)

// FieldGeneral scopes an error to the whole request rather than one field.
const FieldGeneral = "general"

// Error is a coded domain error. Message is user-facing for every code
// except CodeInternal, whose message is for logs only.
type Error struct {
	Code    Code
	Field   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// New returns a coded error scoped to the whole request.
func New(code Code, message string) *Error {
	return &Error{Code: code, Field: FieldGeneral, Message: message}
}

// NewField returns a coded error scoped to a single input field.
func NewField(code Code, field, message string) *Error {
	return &Error{Code: code, Field: field, Message: message}
}

// Wrap annotates an underlying error with a code and message while keeping
// the cause reachable through errors.Is/errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Field: FieldGeneral, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err. Errors that never passed through this
// package are unexpected by definition and classify as CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldOf extracts the field scope from err, defaulting to FieldGeneral.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Field != "" {
		return de.Field
	}
	return FieldGeneral
}

// ToHTTPStatus maps a code to the response status the wire contract fixes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}
