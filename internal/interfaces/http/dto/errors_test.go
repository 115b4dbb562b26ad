package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUploadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeDocsUnavailable, http.StatusNotFound},
		{ErrCodeDocsRestricted, http.StatusForbidden},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"LOGIN_DISABLED", http.StatusUnauthorized},
		{"IMAGE_HOST_UNAUTHORIZED", http.StatusUnauthorized},
		{"CATEGORY_IN_USE", http.StatusConflict},
		{"INVALID_PRICE", http.StatusBadRequest},
		{"MISSING_CART_SESSION", http.StatusBadRequest},
		{"EMPTY_CART", http.StatusUnprocessableEntity},
		{"MISSING_WHATSAPP_NUMBER", http.StatusUnprocessableEntity},
		{"IMAGE_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"IMAGE_INVALID_TYPE", http.StatusUnsupportedMediaType},
		{"IMAGE_HOST_ERROR", http.StatusBadGateway},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"CONFLICT", ErrCodeConflict},
		{"UNAUTHORIZED", ErrCodeUnauthorized},
		// storefront codes pass through unchanged
		{"EMPTY_CART", "EMPTY_CART"},
		{"IMAGE_TOO_LARGE", "IMAGE_TOO_LARGE"},
		{ErrCodeNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNormalizedCodesHaveStatus(t *testing.T) {
	for generic, mapped := range genericErrorCodeMapping {
		t.Run(generic, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(mapped, "ERR_"))
			_, ok := ErrorCodeHTTPStatus[mapped]
			assert.True(t, ok, "code %s should have a status", mapped)
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Product not found", "req-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Product not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "username", Message: "This field is required"},
		{Field: "password", Message: "This field is required"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "username", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithWarnings(t *testing.T) {
	t.Run("warnings are serialized", func(t *testing.T) {
		resp := NewSuccessResponseWithWarnings(map[string]int{"n": 1}, []string{"PERSISTENCE_FAILED: products could not be saved"})

		data, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"warnings":["PERSISTENCE_FAILED: products could not be saved"]`)
		assert.Contains(t, string(data), `"success":true`)
	})

	t.Run("no warnings key when empty", func(t *testing.T) {
		data, err := json.Marshal(NewSuccessResponseWithWarnings("ok", nil))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "warnings")
		assert.NotContains(t, string(data), "error")
	})
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]string{"a", "b"}, 2)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
}
