package handlers

import (
	"github.com/gin-gonic/gin"

	"ar-viewer-backend/internal/auth"
	"ar-viewer-backend/internal/middleware"
)

// RouterDeps carries everything route registration needs.
type RouterDeps struct {
	Auth   *AuthHandler
	Upload *UploadHandler
	Public *PublicModelsHandler
	Admin  *AdminModelsHandler
	Issuer *auth.TokenIssuer
}

// RegisterRoutes attaches the full API surface to the engine.
func RegisterRoutes(router *gin.Engine, deps RouterDeps) {
	router.GET("/health", HealthHandler)

	api := router.Group("/api")
	api.POST("/auth/login", deps.Auth.Login)

	api.POST("/upload", deps.Upload.Upload)
	api.DELETE("/upload/:sessionId", deps.Upload.CleanupSession)
	// Page-unload beacon variant; same teardown, must never require the
	// client to read the response.
	api.POST("/upload/cleanup/:sessionId", deps.Upload.CleanupSession)

	api.GET("/models/public", deps.Public.List)
	api.GET("/models/:id", deps.Public.Get)

	admin := api.Group("/admin", middleware.AuthMiddleware(deps.Issuer), middleware.AdminMiddleware())
	admin.GET("/models", deps.Admin.List)
	admin.GET("/models/:id", deps.Admin.Get)
	admin.GET("/models/:id/configurator", deps.Admin.GetConfigurator)
	admin.POST("/models", deps.Admin.Create)
	admin.PUT("/models/:id", deps.Admin.Update)
	admin.PATCH("/models/:id", deps.Admin.Patch)
	admin.DELETE("/models/:id", deps.Admin.Delete)
}
