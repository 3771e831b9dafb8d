package handler

import (
	"crosspay/internal/adapter/http/dto"
	"crosspay/internal/adapter/http/middleware"
	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
	"crosspay/pkg/apperror"
	"crosspay/pkg/response"

	"github.com/gin-gonic/gin"
)

var withdrawalStatuses = []string{
	string(domain.WithdrawalStatusPending),
	string(domain.WithdrawalStatusProviderSelected),
	string(domain.WithdrawalStatusCompleted),
	string(domain.WithdrawalStatusFailed),
}

// WithdrawalHandler handles withdrawal state machine endpoints.
type WithdrawalHandler struct {
	withdrawalSvc ports.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalSvc ports.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc}
}

// CreateWithdrawal handles POST /api/v1/withdrawals. The caller is the payee.
func (h *WithdrawalHandler) CreateWithdrawal(c *gin.Context) {
	payee, ok := caller(c)
	if !ok {
		return
	}

	var req dto.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	withdrawal, err := h.withdrawalSvc.CreateWithdrawal(c.Request.Context(), ports.CreateWithdrawalRequest{
		Payee:          payee,
		Amount:         req.Amount,
		Asset:          req.Asset,
		PayoutMethod:   domain.PayoutMethod(req.PayoutMethod),
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, withdrawal)
}

// GetWithdrawal handles GET /api/v1/withdrawals/:address. Callers other
// than the payee and the selected provider see WithdrawalNotFound.
func (h *WithdrawalHandler) GetWithdrawal(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c)
	if !ok {
		return
	}

	withdrawal, err := h.withdrawalSvc.GetWithdrawal(c.Request.Context(), addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !withdrawal.Involves(identity) {
		response.Error(c, apperror.ErrWithdrawalNotFound())
		return
	}
	response.OK(c, withdrawal)
}

// ListWithdrawals handles GET /api/v1/withdrawals. It lists withdrawals the
// caller requested or serves as provider.
func (h *WithdrawalHandler) ListWithdrawals(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	params, ok := listParams(c, identity, withdrawalStatuses...)
	if !ok {
		return
	}

	items, total, err := h.withdrawalSvc.ListWithdrawals(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []domain.WithdrawalRequest{}
	}

	page, size := pageOf(params)
	response.OK(c, dto.WithdrawalListResponse{
		Items:      items,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// SelectProvider handles POST /api/v1/withdrawals/:address/provider.
func (h *WithdrawalHandler) SelectProvider(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c)
	if !ok {
		return
	}

	var req dto.SelectProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	withdrawal, err := h.withdrawalSvc.SelectProvider(c.Request.Context(), identity, addr, req.Provider)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, withdrawal)
}

// FinalizeWithdrawal handles POST /api/v1/withdrawals/:address/finalize.
// The payee confirms receipt of the payout.
func (h *WithdrawalHandler) FinalizeWithdrawal(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c)
	if !ok {
		return
	}

	withdrawal, err := h.withdrawalSvc.FinalizeWithdrawal(c.Request.Context(), identity, addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, withdrawal)
}

// CancelWithdrawal handles POST /api/v1/withdrawals/:address/cancel.
func (h *WithdrawalHandler) CancelWithdrawal(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c)
	if !ok {
		return
	}

	withdrawal, err := h.withdrawalSvc.CancelWithdrawal(c.Request.Context(), identity, addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, withdrawal)
}
