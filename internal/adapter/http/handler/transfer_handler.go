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

var transferStatuses = []string{
	string(domain.TransferStatusPending),
	string(domain.TransferStatusCompleted),
	string(domain.TransferStatusFailed),
	string(domain.TransferStatusCancelled),
}

// TransferHandler handles transfer state machine endpoints.
type TransferHandler struct {
	transferSvc ports.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferSvc ports.TransferService) *TransferHandler {
	return &TransferHandler{transferSvc: transferSvc}
}

// CreateTransfer handles POST /api/v1/transfers. The caller is the sender.
// An Idempotency-Key header makes retries replay the first response.
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	sender, ok := caller(c)
	if !ok {
		return
	}

	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	transfer, err := h.transferSvc.CreateTransfer(c.Request.Context(), ports.CreateTransferRequest{
		Sender:         sender,
		Receiver:       req.Receiver,
		Amount:         req.Amount,
		Asset:          req.Asset,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, transfer)
}

// GetTransfer handles GET /api/v1/transfers/:address. Callers other than
// the sender and receiver see TransferNotFound.
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c)
	if !ok {
		return
	}

	transfer, err := h.transferSvc.GetTransfer(c.Request.Context(), addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !transfer.Involves(identity) {
		response.Error(c, apperror.ErrTransferNotFound())
		return
	}
	response.OK(c, transfer)
}

// ListTransfers handles GET /api/v1/transfers. It lists transfers the caller
// sent or received.
func (h *TransferHandler) ListTransfers(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	params, ok := listParams(c, identity, transferStatuses...)
	if !ok {
		return
	}

	items, total, err := h.transferSvc.ListTransfers(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []domain.TransferRequest{}
	}

	page, size := pageOf(params)
	response.OK(c, dto.TransferListResponse{
		Items:      items,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// SettleTransfer handles POST /api/v1/transfers/:address/settle.
func (h *TransferHandler) SettleTransfer(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c)
	if !ok {
		return
	}

	transfer, err := h.transferSvc.SettleTransfer(c.Request.Context(), identity, addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, transfer)
}

// CancelTransfer handles POST /api/v1/transfers/:address/cancel.
func (h *TransferHandler) CancelTransfer(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c)
	if !ok {
		return
	}

	transfer, err := h.transferSvc.CancelTransfer(c.Request.Context(), identity, addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, transfer)
}
