package api

import (
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP surface calls into.
type Services struct {
	Auth    service.AuthService
	Reports service.ReportService
	Exports service.ExportService
}

// Webhook is set in webhook mode only.
type Webhook struct {
	Path   string
	Secret string
	Sink   UpdateSink
}

func SetupRoutes(router *gin.Engine, svc Services, webhook *Webhook, log logging.Logger) {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Reports, svc.Exports)

	authMiddleware := AuthMiddleware(svc.Auth.GetJWTSecret())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if webhook != nil {
		router.POST(webhook.Path, NewWebhookHandler(webhook.Sink, webhook.Secret, log).Receive)
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}
	}

	// --- Admin Routes ---
	protected := apiV1.Group("")
	protected.Use(authMiddleware, RoleMiddleware(service.RoleAdmin))
	{
		userGroup := protected.Group("/users/:telegramId")
		{
			// GET /api/v1/users/{telegramId}/stats?window=monthly
			userGroup.GET("/stats", userHandler.GetStats)
			// POST /api/v1/users/{telegramId}/export
			userGroup.POST("/export", userHandler.CreateExport)
		}
	}
}
