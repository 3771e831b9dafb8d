package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("PAY_001", "Insufficient token balance", http.StatusPaymentRequired),
			expected: "[PAY_001] Insufficient token balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("PAY_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("settle: %w", ErrInvalidTransferStatus())

	assert.True(t, HasCode(wrapped, CodeInvalidTransferStatus))
	assert.False(t, HasCode(wrapped, CodeTransferNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestErrorCatalog(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"KycNotVerified", ErrKycNotVerified(), "KYC_001", 403},
		{"InvalidCountryCode", ErrInvalidCountryCode(), "KYC_002", 400},
		{"ProfileNotFound", ErrProfileNotFound(), "KYC_003", 404},
		{"ProfileExists", ErrProfileExists(), "KYC_004", 409},
		{"InsufficientBalance", ErrInsufficientBalance(), "PAY_001", 402},
		{"InvalidAmount", ErrInvalidAmount(), "PAY_002", 400},
		{"InvalidFeeCalculation", ErrInvalidFeeCalculation(), "PAY_003", 422},
		{"ArithmeticOverflow", ErrArithmeticOverflow(), "PAY_004", 422},
		{"DuplicateRecord", ErrDuplicateRecord(), "PAY_005", 409},
		{"RequestInProgress", ErrRequestInProgress(), "PAY_006", 409},
		{"TransferNotFound", ErrTransferNotFound(), "TRF_001", 404},
		{"InvalidTransferStatus", ErrInvalidTransferStatus(), "TRF_002", 409},
		{"InvalidReceiver", ErrInvalidReceiver(), "TRF_003", 400},
		{"WithdrawalNotFound", ErrWithdrawalNotFound(), "WDR_001", 404},
		{"InvalidWithdrawalStatus", ErrInvalidWithdrawalStatus(), "WDR_002", 409},
		{"ProviderAlreadySelected", ErrProviderAlreadySelected(), "WDR_003", 409},
		{"InvalidPayoutMethod", ErrInvalidPayoutMethod(), "WDR_004", 400},
		{"SelfPayout", ErrSelfPayout(), "WDR_005", 400},
		{"ProviderNotActive", ErrProviderNotActive(), "LP_001", 409},
		{"InsufficientLiquidity", ErrInsufficientLiquidity(), "LP_002", 409},
		{"InvalidLocation", ErrInvalidLocation(), "LP_003", 400},
		{"ProviderNotFound", ErrProviderNotFound(), "LP_004", 404},
		{"ProviderExists", ErrProviderExists(), "LP_005", 409},
		{"Unauthorized", ErrUnauthorized(), "AUTH_001", 403},
		{"InvalidToken", ErrInvalidToken(), "AUTH_002", 401},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", 429},
		{"PayloadTooLarge", ErrPayloadTooLarge(), "SYS_003", 413},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")

	internal := InternalError(inner)
	assert.Equal(t, "SYS_001", internal.Code)
	assert.Equal(t, 500, internal.HTTPStatus)
	assert.True(t, errors.Is(internal, inner))

	conflict := ErrConcurrentUpdate(inner)
	assert.Equal(t, "SYS_002", conflict.Code)
	assert.Equal(t, 409, conflict.HTTPStatus)
	assert.True(t, errors.Is(conflict, inner))
}

func TestValidation(t *testing.T) {
	err := Validation("asset is required")
	assert.Equal(t, "PAY_002", err.Code)
	assert.Equal(t, "asset is required", err.Message)
	assert.Equal(t, 400, err.HTTPStatus)
}
