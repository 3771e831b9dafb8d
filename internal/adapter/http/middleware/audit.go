package middleware

import (
	"net/http"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// auditRoutes maps "METHOD route-pattern" to the audited action.
var auditRoutes = map[string]auditRoute{
	"POST /api/v1/profiles":                      {domain.AuditActionProfileCreate, "profile"},
	"PUT /api/v1/profiles/me/kyc":                {domain.AuditActionKYCUpdate, "profile"},
	"POST /api/v1/providers":                     {domain.AuditActionProviderRegister, "provider"},
	"PUT /api/v1/providers/me/availability":      {domain.AuditActionProviderAvailability, "provider"},
	"POST /api/v1/transfers":                     {domain.AuditActionTransferCreate, "transfer"},
	"POST /api/v1/transfers/:address/settle":     {domain.AuditActionTransferSettle, "transfer"},
	"POST /api/v1/transfers/:address/cancel":     {domain.AuditActionTransferCancel, "transfer"},
	"POST /api/v1/withdrawals":                   {domain.AuditActionWithdrawalCreate, "withdrawal"},
	"POST /api/v1/withdrawals/:address/provider": {domain.AuditActionWithdrawalSelect, "withdrawal"},
	"POST /api/v1/withdrawals/:address/finalize": {domain.AuditActionWithdrawalFinalize, "withdrawal"},
	"POST /api/v1/withdrawals/:address/cancel":   {domain.AuditActionWithdrawalCancel, "withdrawal"},
}

// AuditLog creates an audit middleware that records successful state
// changing requests.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		route, ok := mapRouteToAction(c.Request.Method, c.FullPath())
		if !ok {
			return
		}

		actor, _ := Identity(c)
		resourceID := c.Param("address")
		if resourceID == "" {
			resourceID = actor
		}

		auditSvc.Log(c.Request.Context(), ports.AuditEntry{
			Actor:        actor,
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   resourceID,
			Details: map[string]interface{}{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     status,
				"request_id": c.GetString(CtxRequestID),
			},
			IPAddress: c.ClientIP(),
		})
	}
}

func mapRouteToAction(method, fullPath string) (auditRoute, bool) {
	route, ok := auditRoutes[method+" "+fullPath]
	return route, ok
}
