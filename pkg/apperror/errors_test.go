package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New("PAY_001", "Insufficient available balance", http.StatusPaymentRequired)
	assert.Equal(t, "[PAY_001] Insufficient available balance", err.Error())
}

func TestAppError_ErrorWithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	err := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, inner)
	assert.Equal(t, "[SYS_001] Internal database error: connection refused", err.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("dial timeout")
	err := ErrGatewayUnavailable(inner)
	assert.True(t, errors.Is(err, inner))
}

func TestErrorCatalog(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"invalid signature", ErrInvalidSignature(), "SEC_001", http.StatusUnauthorized},
		{"invalid credentials", ErrInvalidCredentials(), "SEC_002", http.StatusUnauthorized},
		{"invalid token", ErrInvalidToken(), "SEC_003", http.StatusUnauthorized},
		{"insufficient balance", ErrInsufficientBalance(), "PAY_001", http.StatusPaymentRequired},
		{"invalid amount", ErrInvalidAmount(), "PAY_002", http.StatusBadRequest},
		{"duplicate order", ErrDuplicateOrder(), "PAY_003", http.StatusConflict},
		{"not found", ErrNotFound("merchant"), "PAY_004", http.StatusNotFound},
		{"invalid state", ErrInvalidState("approval"), "PAY_005", http.StatusConflict},
		{"order not found", ErrOrderNotFound(), "PAY_006", http.StatusNotFound},
		{"link expired", ErrLinkExpired(), "PAY_007", http.StatusGone},
		{"gateway unavailable", ErrGatewayUnavailable(nil), "GW_001", http.StatusBadGateway},
		{"rate limit", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{"validation", Validation("amount is required"), "VAL_001", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrNotFound_Message(t *testing.T) {
	assert.Equal(t, "merchant not found", ErrNotFound("merchant").Message)
}

func TestErrInvalidState_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidState("rejection").Message, "rejection")
}
