package handler

import (
	"crosspay/internal/adapter/http/middleware"
	"crosspay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	IdentitySvc    ports.IdentityService
	ProviderSvc    ports.ProviderService
	TransferSvc    ports.TransferService
	WithdrawalSvc  ports.WithdrawalService
	TokenSvc       ports.TokenService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// Every API route is bearer-authenticated; limits are keyed by identity.
	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))

	profileHandler := NewProfileHandler(deps.IdentitySvc)
	profiles := v1.Group("/profiles")
	{
		profiles.POST("", rl("registry"), profileHandler.CreateProfile)
		profiles.PUT("/me/kyc", rl("registry"), profileHandler.SetKYC)
		profiles.GET("/:identity", rl("reads"), profileHandler.GetProfile)
	}

	providerHandler := NewProviderHandler(deps.ProviderSvc)
	providers := v1.Group("/providers")
	{
		providers.POST("", rl("registry"), providerHandler.RegisterProvider)
		providers.PUT("/me/availability", rl("registry"), providerHandler.SetAvailability)
		providers.GET("/:owner", rl("reads"), providerHandler.GetProvider)
	}

	transferHandler := NewTransferHandler(deps.TransferSvc)
	transfers := v1.Group("/transfers")
	{
		transfers.POST("", rl("transfers"), transferHandler.CreateTransfer)
		transfers.GET("", rl("reads"), transferHandler.ListTransfers)
		transfers.GET("/:address", rl("reads"), transferHandler.GetTransfer)
		transfers.POST("/:address/settle", rl("settlement"), transferHandler.SettleTransfer)
		transfers.POST("/:address/cancel", rl("settlement"), transferHandler.CancelTransfer)
	}

	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalSvc)
	withdrawals := v1.Group("/withdrawals")
	{
		withdrawals.POST("", rl("withdrawals"), withdrawalHandler.CreateWithdrawal)
		withdrawals.GET("", rl("reads"), withdrawalHandler.ListWithdrawals)
		withdrawals.GET("/:address", rl("reads"), withdrawalHandler.GetWithdrawal)
		withdrawals.POST("/:address/provider", rl("withdrawals"), withdrawalHandler.SelectProvider)
		withdrawals.POST("/:address/finalize", rl("settlement"), withdrawalHandler.FinalizeWithdrawal)
		withdrawals.POST("/:address/cancel", rl("withdrawals"), withdrawalHandler.CancelWithdrawal)
	}

	return r
}
