package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried by APIError.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeOperationRunning = "OPERATION_RUNNING"
)

// APIError is a request-level failure with a fixed status and code:
// malformed bodies, limits and conflicts. Failures of the reconstruction
// itself are AppErrors.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError names one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// ErrPayloadTooLarge is returned when a body exceeds the server limit.
var ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Request body too large")

// InvalidRequestWithError reports a body that could not be decoded.
func InvalidRequestWithError(err error) *APIError {
	e := New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	e.Details = err.Error()
	return e
}

// Conflict reports a request that cannot run in the current state.
func Conflict(code, message string) *APIError {
	return New(http.StatusConflict, code, message)
}
