package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, CacheError, "cache read failed")

	assert.Equal(t, CacheError, wrappedErr.Type)
	assert.Equal(t, "cache read failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, originalErr, wrappedErr.Raw)
	assert.ErrorIs(t, wrappedErr, originalErr)
}

func TestTransport(t *testing.T) {
	originalErr := fmt.Errorf("dial tcp: connection refused")
	err := Transport(originalErr)

	assert.Equal(t, TransportError, err.Type)
	assert.Equal(t, GenericTransportMessage, err.Message)
	assert.Equal(t, originalErr, err.Raw)
	assert.True(t, IsTransport(err))
}

func TestAuthenticationFailed(t *testing.T) {
	err := AuthenticationFailed("Invalid credentials")
	assert.Equal(t, AuthError, err.Type)
	assert.Equal(t, "Invalid credentials", err.Message)
	assert.Equal(t, http.StatusUnauthorized, err.HTTPStatus)
	assert.True(t, IsAuth(err))
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		expected ErrorType
	}{
		{name: "unauthorized", status: 401, message: "token expired", expected: AuthError},
		{name: "forbidden", status: 403, message: "access denied", expected: AuthError},
		{name: "not found", status: 404, message: "", expected: NotFoundError},
		{name: "validation", status: 400, message: "insufficient stock", expected: ValidationError},
		{name: "conflict", status: 409, message: "duplicate category", expected: ValidationError},
		{name: "server", status: 500, message: "", expected: ServerError},
		{name: "bad gateway", status: 502, message: "", expected: ServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, tt.message)
			assert.Equal(t, tt.expected, err.Type)
			assert.Equal(t, tt.status, err.HTTPStatus)
			if tt.message != "" {
				// Server-supplied messages are surfaced verbatim.
				assert.Equal(t, tt.message, err.Message)
			} else {
				assert.Equal(t, GenericRequestMessage, err.Message)
			}
		})
	}
}

func TestFromStatusEmptyMessageFallback(t *testing.T) {
	err := FromStatus(400, "")
	assert.Equal(t, GenericRequestMessage, err.Message)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("category endpoint")))
	assert.False(t, IsNotFound(AuthenticationFailed("nope")))
	assert.False(t, IsNotFound(fmt.Errorf("plain error")))
}

func TestError_Error(t *testing.T) {
	withDetail := New(ValidationError, "invalid email", "format not correct")
	assert.Equal(t, "VALIDATION_ERROR: invalid email (format not correct)", withDetail.Error())

	withoutDetail := AuthenticationFailed("session expired")
	assert.Equal(t, "AUTHENTICATION_ERROR: session expired", withoutDetail.Error())
}
