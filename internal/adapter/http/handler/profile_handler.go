package handler

import (
	"crosspay/internal/adapter/http/dto"
	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
	"crosspay/pkg/apperror"
	"crosspay/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProfileHandler handles identity registry endpoints.
type ProfileHandler struct {
	identitySvc ports.IdentityService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(identitySvc ports.IdentityService) *ProfileHandler {
	return &ProfileHandler{identitySvc: identitySvc}
}

// CreateProfile handles POST /api/v1/profiles.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	var req dto.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	profile, err := h.identitySvc.CreateProfile(c.Request.Context(), ports.CreateProfileRequest{
		Identity:    identity,
		Role:        domain.UserRole(req.Role),
		CountryCode: req.CountryCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, profile)
}

// SetKYC handles PUT /api/v1/profiles/me/kyc.
func (h *ProfileHandler) SetKYC(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	var req dto.SetKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	var hash domain.Digest
	if req.KYCHash != "" {
		parsed, err := domain.ParseDigest(req.KYCHash)
		if err != nil {
			response.Error(c, apperror.Validation("kyc_hash must be 64 hex characters"))
			return
		}
		hash = parsed
	}

	profile, err := h.identitySvc.SetKYC(c.Request.Context(), ports.SetKYCRequest{
		Identity: identity,
		Verified: *req.Verified,
		KYCHash:  hash,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profile)
}

// GetProfile handles GET /api/v1/profiles/:identity.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.identitySvc.GetProfile(c.Request.Context(), c.Param("identity"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}
