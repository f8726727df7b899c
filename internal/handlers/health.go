package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ar-viewer-backend/internal/models"
)

// HealthHandler reports process liveness.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
