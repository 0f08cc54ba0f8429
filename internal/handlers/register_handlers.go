package handlers

import (
	"github.com/SscSPs/rewards_ledger/cmd/docs"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/SscSPs/rewards_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerHomeRoutes(v1, service.Schedule)
	registerAccountRoutes(v1, service.Account, service.Ledger, service.ReferralGraph)
	registerLedgerRoutes(v1, service.Ledger, ledgerConfigResponse(cfg))
	registerCommissionRoutes(v1, service.Distributor, service.Schedule)
	registerEventRoutes(v1, service.Earning)
}

func ledgerConfigResponse(cfg *config.Config) dto.LedgerConfigResponse {
	return dto.LedgerConfigResponse{
		CommissionLedger:  domain.LedgerKind(cfg.CommissionLedger),
		CashDecimalPlaces: cfg.CashDecimalPlaces,
		PointsPerCashUnit: cfg.PointsPerCashUnit,
		MaxReferralDepth:  domain.MaxReferralDepth,
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
