package httputil

import (
	"errors"
	"net/http"
)

// StatusError is an error carrying the HTTP status and response body it
// should be reported with. Handlers construct one at their own boundary and
// hand it to WriteErr; nothing below the handler layer knows about HTTP
// statuses.
type StatusError struct {
	Status  int
	Message string
	Details string
}

func (e *StatusError) Error() string { return e.Message }

// Validation reports missing or malformed required input (400).
func Validation(message string) *StatusError {
	return &StatusError{Status: http.StatusBadRequest, Message: message}
}

// NotFound reports an expected remote record being absent (404).
func NotFound(message string) *StatusError {
	return &StatusError{Status: http.StatusNotFound, Message: message}
}

// Conflict reports a duplicate record (409).
func Conflict(message string) *StatusError {
	return &StatusError{Status: http.StatusConflict, Message: message}
}

// InvalidCredential reports a failed credential check such as an OTP
// mismatch (401).
func InvalidCredential(message string) *StatusError {
	return &StatusError{Status: http.StatusUnauthorized, Message: message}
}

// Internal reports a failed remote call (500) with a stable message plus the
// underlying error detail.
func Internal(message string, err error) *StatusError {
	se := &StatusError{Status: http.StatusInternalServerError, Message: message}
	if err != nil {
		se.Details = err.Error()
	}
	return se
}

// PartialFailure reports a request that created a resource but failed a
// dependent provisioning step (500). The message must distinguish it from
// total failure; no rollback is attempted.
func PartialFailure(message string) *StatusError {
	return &StatusError{Status: http.StatusInternalServerError, Message: message}
}

// WriteErr maps an error to exactly one JSON error response. StatusErrors
// carry their own status; anything else is reported as a 500.
func WriteErr(w http.ResponseWriter, err error) {
	var se *StatusError
	if errors.As(err, &se) {
		WriteJSON(w, se.Status, ErrorBody{Error: se.Message, Details: se.Details})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal error", Details: err.Error()})
}
