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

// caller returns the authenticated identity, writing AUTH_002 when absent.
func caller(c *gin.Context) (string, bool) {
	identity, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return "", false
	}
	return identity, true
}

// addressParam decodes the :address path parameter.
func addressParam(c *gin.Context) (domain.Address, bool) {
	addr, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid record address"))
		return domain.Address{}, false
	}
	return addr, true
}

// listParams binds paging query parameters for identity. allowed lists the
// accepted status filter values.
func listParams(c *gin.Context, identity string, allowed ...string) (ports.ListParams, bool) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return ports.ListParams{}, false
	}

	params := ports.ListParams{Identity: identity, Page: q.Page, PageSize: q.PageSize}
	if q.Status != "" {
		valid := false
		for _, s := range allowed {
			if q.Status == s {
				valid = true
				break
			}
		}
		if !valid {
			response.Error(c, apperror.Validation("unknown status filter"))
			return ports.ListParams{}, false
		}
		params.Status = &q.Status
	}
	return params, true
}

// pageOf reports the page actually served after the service applied its
// defaults.
func pageOf(params ports.ListParams) (int, int) {
	served := params.Normalize()
	return served.Page, served.PageSize
}
