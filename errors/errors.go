package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	TransportError  ErrorType = "TRANSPORT_ERROR"
	AuthError       ErrorType = "AUTHENTICATION_ERROR"
	ValidationError ErrorType = "VALIDATION_ERROR"
	NotFoundError   ErrorType = "NOT_FOUND"
	ServerError     ErrorType = "SERVER_ERROR"
	CacheError      ErrorType = "CACHE_ERROR"
)

// Fallback messages shown to the user when the backend supplies none.
const (
	GenericTransportMessage = "Cannot reach the server. Please check your connection and try again."
	GenericRequestMessage   = "Request failed. Please try again."
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Detail:  detail,
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Detail:  err.Error(),
		Raw:     err,
	}
}

// Transport wraps a failure that prevented a response from reaching the client
// (DNS failure, refused connection, timeout). Never retried automatically.
func Transport(err error) *AppError {
	return &AppError{
		Type:    TransportError,
		Message: GenericTransportMessage,
		Detail:  err.Error(),
		Raw:     err,
	}
}

// AuthenticationFailed covers 401/403 responses. Callers are expected to clear
// the stored credential and send the user back to login.
func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewCacheError wraps a local key-value store failure. These are never shown
// verbatim to the user.
func NewCacheError(err error) *AppError {
	return &AppError{
		Type:    CacheError,
		Message: "Local storage operation failed",
		Detail:  err.Error(),
		Raw:     err,
	}
}

// FromStatus maps a non-2xx HTTP status and the message decoded from the
// response body to the client error taxonomy. An empty message falls back to a
// generic user-facing string so the body shape never dictates what we surface.
func FromStatus(status int, message string) *AppError {
	if message == "" {
		message = GenericRequestMessage
	}

	var errType ErrorType
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		errType = AuthError
	case status == http.StatusNotFound:
		errType = NotFoundError
	case status >= 400 && status < 500:
		errType = ValidationError
	default:
		errType = ServerError
	}

	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsAuth reports whether err signals an authentication failure (401/403),
// the one case that requires clearing local credentials as a side effect.
func IsAuth(err error) bool {
	return IsType(err, AuthError)
}

// IsNotFound reports whether err is a 404 mapped error. Optional backend
// features treat this as non-fatal and fall back to local persistence.
func IsNotFound(err error) bool {
	return IsType(err, NotFoundError)
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	return IsType(err, TransportError)
}
