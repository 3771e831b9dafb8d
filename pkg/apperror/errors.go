package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Error codes.
const (
	CodeKycNotVerified          = "KYC_001"
	CodeInvalidCountryCode      = "KYC_002"
	CodeProfileNotFound         = "KYC_003"
	CodeProfileExists           = "KYC_004"
	CodeInsufficientBalance     = "PAY_001"
	CodeInvalidAmount           = "PAY_002"
	CodeInvalidFeeCalculation   = "PAY_003"
	CodeArithmeticOverflow      = "PAY_004"
	CodeDuplicateRecord         = "PAY_005"
	CodeRequestInProgress       = "PAY_006"
	CodeTransferNotFound        = "TRF_001"
	CodeInvalidTransferStatus   = "TRF_002"
	CodeInvalidReceiver         = "TRF_003"
	CodeWithdrawalNotFound      = "WDR_001"
	CodeInvalidWithdrawalStatus = "WDR_002"
	CodeProviderAlreadySelected = "WDR_003"
	CodeInvalidPayoutMethod     = "WDR_004"
	CodeSelfPayout              = "WDR_005"
	CodeProviderNotActive       = "LP_001"
	CodeInsufficientLiquidity   = "LP_002"
	CodeInvalidLocation         = "LP_003"
	CodeProviderNotFound        = "LP_004"
	CodeProviderExists          = "LP_005"
	CodeUnauthorized            = "AUTH_001"
	CodeInvalidToken            = "AUTH_002"
	CodeRateLimitExceeded       = "RATE_001"
	CodeInternal                = "SYS_001"
	CodeConcurrentUpdate        = "SYS_002"
	CodePayloadTooLarge         = "SYS_003"
)

// ---- Identity & KYC (KYC) ----

func ErrKycNotVerified() *AppError {
	return New(CodeKycNotVerified, "KYC verification is required to perform this action", http.StatusForbidden)
}

func ErrInvalidCountryCode() *AppError {
	return New(CodeInvalidCountryCode, "Invalid country code - must be 1 to 3 characters", http.StatusBadRequest)
}

func ErrProfileNotFound() *AppError {
	return New(CodeProfileNotFound, "User profile not found", http.StatusNotFound)
}

func ErrProfileExists() *AppError {
	return New(CodeProfileExists, "User profile already exists", http.StatusConflict)
}

// ---- Value movement (PAY) ----

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient token balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Invalid amount - must be greater than 0", http.StatusBadRequest)
}

func ErrInvalidFeeCalculation() *AppError {
	return New(CodeInvalidFeeCalculation, "Invalid fee calculation", http.StatusUnprocessableEntity)
}

func ErrArithmeticOverflow() *AppError {
	return New(CodeArithmeticOverflow, "Arithmetic overflow", http.StatusUnprocessableEntity)
}

func ErrDuplicateRecord() *AppError {
	return New(CodeDuplicateRecord, "Record already exists at derived address", http.StatusConflict)
}

func ErrRequestInProgress() *AppError {
	return New(CodeRequestInProgress, "A request with this idempotency key is already in progress", http.StatusConflict)
}

// ---- Transfers (TRF) ----

func ErrTransferNotFound() *AppError {
	return New(CodeTransferNotFound, "Transfer request not found", http.StatusNotFound)
}

func ErrInvalidTransferStatus() *AppError {
	return New(CodeInvalidTransferStatus, "Invalid transfer status for this operation", http.StatusConflict)
}

func ErrInvalidReceiver() *AppError {
	return New(CodeInvalidReceiver, "Invalid receiver", http.StatusBadRequest)
}

// ---- Withdrawals (WDR) ----

func ErrWithdrawalNotFound() *AppError {
	return New(CodeWithdrawalNotFound, "Withdrawal request not found", http.StatusNotFound)
}

func ErrInvalidWithdrawalStatus() *AppError {
	return New(CodeInvalidWithdrawalStatus, "Invalid withdrawal status for this operation", http.StatusConflict)
}

func ErrProviderAlreadySelected() *AppError {
	return New(CodeProviderAlreadySelected, "Provider already selected for this withdrawal - cannot change", http.StatusConflict)
}

func ErrInvalidPayoutMethod() *AppError {
	return New(CodeInvalidPayoutMethod, "Invalid payout method", http.StatusBadRequest)
}

func ErrSelfPayout() *AppError {
	return New(CodeSelfPayout, "A payee cannot select themselves as liquidity provider", http.StatusBadRequest)
}

// ---- Liquidity providers (LP) ----

func ErrProviderNotActive() *AppError {
	return New(CodeProviderNotActive, "Liquidity provider is not active", http.StatusConflict)
}

func ErrInsufficientLiquidity() *AppError {
	return New(CodeInsufficientLiquidity, "Insufficient liquidity available from provider", http.StatusConflict)
}

func ErrInvalidLocation() *AppError {
	return New(CodeInvalidLocation, "Invalid location string - maximum 50 characters allowed", http.StatusBadRequest)
}

func ErrProviderNotFound() *AppError {
	return New(CodeProviderNotFound, "Liquidity provider not found", http.StatusNotFound)
}

func ErrProviderExists() *AppError {
	return New(CodeProviderExists, "Liquidity provider already registered", http.StatusConflict)
}

// ---- Authorization (AUTH) ----

func ErrUnauthorized() *AppError {
	return New(CodeUnauthorized, "Unauthorized action - you don't have permission", http.StatusForbidden)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// ErrConcurrentUpdate reports a lost optimistic-lock race; the caller may retry.
func ErrConcurrentUpdate(err error) *AppError {
	return Wrap(CodeConcurrentUpdate, "Record was modified concurrently, retry the operation", http.StatusConflict, err)
}

func ErrPayloadTooLarge() *AppError {
	return New(CodePayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New(CodeInvalidAmount, message, http.StatusBadRequest)
}
