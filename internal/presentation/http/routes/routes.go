package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rayypan/invoicegeneration/internal/config"
	"github.com/rayypan/invoicegeneration/internal/presentation/http/handler"
	"github.com/rayypan/invoicegeneration/internal/presentation/http/middleware"
	"github.com/sirupsen/logrus"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Form *handler.FormHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg *config.Config
	Log *logrus.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/signatories", h.Form.Signatories)

		sessions := v1.Group("/sessions")

		// Per-session rate limiter
		rateLimiter := middleware.NewSessionRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / deps.Cfg.RateLimit.Duration.Seconds(),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		sessions.Use(rateLimiter.Middleware())

		registerSessionRoutes(sessions, h)
	}

	return router
}

func registerSessionRoutes(sessions *gin.RouterGroup, h *Handlers) {
	sessions.POST("", h.Form.Create)
	sessions.GET("/:id", h.Form.Get)
	sessions.DELETE("/:id", h.Form.Delete)

	sessions.POST("/:id/fields", h.Form.UpdateField)

	sessions.POST("/:id/items", h.Form.AddItem)
	sessions.PATCH("/:id/items/:index", h.Form.UpdateItem)
	sessions.DELETE("/:id/items/:index", h.Form.RemoveItem)

	sessions.PUT("/:id/password", h.Form.SetPassword)
	sessions.POST("/:id/validate", h.Form.Validate)
	sessions.POST("/:id/submit", h.Form.Submit)
}
