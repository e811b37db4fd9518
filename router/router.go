package router

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/contact-backend/config"
	"github.com/portfolio-site/contact-backend/handlers"
	"github.com/portfolio-site/contact-backend/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/portfolio-site/contact-backend/docs"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config         *config.Config
	ContactHandler *handlers.ContactHandler
	HealthHandler  *handlers.HealthHandler
	// Gatherer backs /metrics. Defaults to the Prometheus default registry.
	Gatherer prometheus.Gatherer
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.ErrorHandler())

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		contactRoutes := v1.Group("/contact")
		contactRoutes.Use(middleware.VisitorMiddleware(deps.Config.IsProduction()))
		{
			contactRoutes.GET("", deps.ContactHandler.GetFormHandler)
			contactRoutes.DELETE("", deps.ContactHandler.EndSessionHandler)
			contactRoutes.PUT("/fields/:field", deps.ContactHandler.UpdateFieldHandler)
			contactRoutes.POST("/validate", deps.ContactHandler.ValidateHandler)
			contactRoutes.GET("/cooldown", deps.ContactHandler.CooldownHandler)
			contactRoutes.POST("/submit", deps.ContactHandler.SubmitHandler)
		}
	}

	return r
}
