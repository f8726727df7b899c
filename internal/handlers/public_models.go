package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ar-viewer-backend/internal/models"
	"ar-viewer-backend/internal/store"
)

// PublicModelsHandler serves the unauthenticated catalog surface.
type PublicModelsHandler struct {
	catalog *store.CatalogStore
}

func NewPublicModelsHandler(catalog *store.CatalogStore) *PublicModelsHandler {
	return &PublicModelsHandler{catalog: catalog}
}

// List returns visible models, newest first.
func (h *PublicModelsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.GetPublicAdminModels())
}

// Get returns one visible model. Hidden models answer exactly like missing
// ones so their existence is not leaked.
func (h *PublicModelsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}

	model, ok := h.catalog.GetAdminModel(id)
	if !ok || !model.Visible {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}
	c.JSON(http.StatusOK, model)
}
