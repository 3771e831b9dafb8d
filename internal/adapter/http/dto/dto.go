package dto

import "crosspay/internal/core/domain"

// CreateProfileRequest is the request body for profile creation. The identity
// comes from the bearer token.
type CreateProfileRequest struct {
	Role        string `json:"role" binding:"required,oneof=SENDER RECEIVER BOTH"`
	CountryCode string `json:"country_code"`
}

// SetKYCRequest is the request body for the KYC flag update.
type SetKYCRequest struct {
	Verified *bool  `json:"verified" binding:"required"`
	KYCHash  string `json:"kyc_hash" binding:"omitempty,kyc_hash"`
}

// RegisterProviderRequest is the request body for provider registration.
type RegisterProviderRequest struct {
	Location     string `json:"location"`
	ExchangeRate uint64 `json:"exchange_rate"`
}

// SetAvailabilityRequest is the request body for the owner's availability
// control.
type SetAvailabilityRequest struct {
	AvailableLiquidity *uint64 `json:"available_liquidity" binding:"required"`
	IsActive           *bool   `json:"is_active" binding:"required"`
}

// CreateTransferRequest is the request body for transfer creation. Amount is
// validated by the service so KYC is checked first.
type CreateTransferRequest struct {
	Receiver string `json:"receiver" binding:"required,safe_id,max=128"`
	Amount   uint64 `json:"amount"`
	Asset    string `json:"asset" binding:"required,asset_code"`
}

// CreateWithdrawalRequest is the request body for withdrawal creation.
type CreateWithdrawalRequest struct {
	Amount       uint64 `json:"amount"`
	Asset        string `json:"asset" binding:"required,asset_code"`
	PayoutMethod string `json:"payout_method" binding:"required"`
}

// SelectProviderRequest is the request body for provider selection.
type SelectProviderRequest struct {
	Provider string `json:"provider" binding:"required,safe_id,max=128"`
}

// ListQuery holds paging and filter query parameters.
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,safe_id,max=32"`
}

// TransferListResponse wraps a paginated transfer list.
type TransferListResponse struct {
	Items      []domain.TransferRequest `json:"items"`
	Pagination Pagination               `json:"pagination"`
}

// WithdrawalListResponse wraps a paginated withdrawal list.
type WithdrawalListResponse struct {
	Items      []domain.WithdrawalRequest `json:"items"`
	Pagination Pagination                 `json:"pagination"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes the page count for total items.
func NewPagination(total int64, page, pageSize int) Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Pagination{Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
}
