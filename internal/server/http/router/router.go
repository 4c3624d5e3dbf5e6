package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/valog/shopbot/internal/pkg/signature"
	"github.com/valog/shopbot/internal/server/http/handlers"
	"github.com/valog/shopbot/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.PaymentFacade, verifier signature.Verifier, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade, logger)

	api := engine.Group("/api")
	api.POST("/orders", orderHandler.Create)
	api.GET("/orders/:id", orderHandler.Get)

	webhooks := api.Group("/webhooks")
	webhooks.Use(middleware.VerifySignature(verifier))
	webhooks.POST("/payment", webhookHandler.Receive)

	return engine
}
