package handler

import (
	"crosspay/internal/adapter/http/dto"
	"crosspay/internal/core/ports"
	"crosspay/pkg/apperror"
	"crosspay/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProviderHandler handles liquidity provider registry endpoints.
type ProviderHandler struct {
	providerSvc ports.ProviderService
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(providerSvc ports.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerSvc: providerSvc}
}

// RegisterProvider handles POST /api/v1/providers. The caller becomes the
// provider's owner.
func (h *ProviderHandler) RegisterProvider(c *gin.Context) {
	owner, ok := caller(c)
	if !ok {
		return
	}

	var req dto.RegisterProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	provider, err := h.providerSvc.RegisterProvider(c.Request.Context(), ports.RegisterProviderRequest{
		Owner:        owner,
		Location:     req.Location,
		ExchangeRate: req.ExchangeRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, provider)
}

// SetAvailability handles PUT /api/v1/providers/me/availability.
func (h *ProviderHandler) SetAvailability(c *gin.Context) {
	owner, ok := caller(c)
	if !ok {
		return
	}

	var req dto.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	provider, err := h.providerSvc.SetAvailability(c.Request.Context(), ports.SetAvailabilityRequest{
		Owner:              owner,
		AvailableLiquidity: *req.AvailableLiquidity,
		IsActive:           *req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, provider)
}

// GetProvider handles GET /api/v1/providers/:owner.
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	provider, err := h.providerSvc.GetProvider(c.Request.Context(), c.Param("owner"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, provider)
}
