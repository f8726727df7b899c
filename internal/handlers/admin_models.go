package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/models"
	"ar-viewer-backend/internal/storage"
	"ar-viewer-backend/internal/store"
)

const maxTextureFiles = 10

// AdminModelsHandler manages the permanent catalog: create, full and partial
// update, cascade delete, and the configurator endpoint.
type AdminModelsHandler struct {
	catalog  *store.CatalogStore
	files    *storage.FileStore
	maxBytes int64
	log      *logger.Logger
}

func NewAdminModelsHandler(catalog *store.CatalogStore, files *storage.FileStore, maxBytes int64, log *logger.Logger) *AdminModelsHandler {
	return &AdminModelsHandler{catalog: catalog, files: files, maxBytes: maxBytes, log: log}
}

// List returns every model, hidden ones included.
func (h *AdminModelsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.GetAllAdminModels())
}

// Get returns one model regardless of visibility.
func (h *AdminModelsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}
	model, ok := h.catalog.GetAdminModel(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}
	c.JSON(http.StatusOK, model)
}

// GetConfigurator returns the model's configurator metadata, or an
// empty-but-valid structure when none exists yet.
func (h *AdminModelsHandler) GetConfigurator(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}
	meta, ok := h.catalog.GetConfiguratorMetadata(id)
	if !ok {
		c.JSON(http.StatusOK, models.ConfiguratorMetadata{
			ModelID:   id,
			Parts:     []string{},
			Textures:  map[string][]string{},
			Materials: map[string][]string{},
			Colors:    []string{},
		})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// Create persists the model file, creates the catalog entry plus its
// configurator metadata, and attaches any texture files.
func (h *AdminModelsHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to parse multipart form", Message: err.Error()})
		return
	}

	modelFiles := form.File["model"]
	if len(modelFiles) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "model file is required"})
		return
	}
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "title is required"})
		return
	}

	parts, colors, err := parseConfiguratorFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	// The id doubles as the on-disk directory name, so it is allocated
	// before the file write and handed to the catalog afterwards.
	id := uuid.New()
	glbPath, err := h.saveUpload(modelFiles[0], id.String(), storage.KindModel)
	if err != nil {
		h.log.Error("failed to save model file", "model_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create model"})
		return
	}

	in := store.CreateAdminModel{
		ID:      id,
		Title:   title,
		GLBPath: glbPath,
	}
	if description := c.PostForm("description"); description != "" {
		in.Description = &description
	}
	in.Category = c.PostForm("category")
	if visible, ok := c.GetPostForm("visible"); ok {
		v := visible == "true"
		in.Visible = &v
	}

	model := h.catalog.CreateAdminModel(in)
	h.catalog.CreateConfiguratorMetadata(model.ID, models.ConfiguratorMetadataUpdate{
		Parts:  parts,
		Colors: colors,
	})
	h.attachTextures(c, model.ID, form.File["textures"])

	h.log.Info("admin model created", "model_id", model.ID, "title", model.Title)
	c.JSON(http.StatusOK, model)
}

// Update is the full-replace resubmission path. A new model file replaces
// the stored asset; textures append; configurator metadata is created if
// absent and updated if present.
func (h *AdminModelsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}
	if _, ok := h.catalog.GetAdminModel(id); !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to parse multipart form", Message: err.Error()})
		return
	}

	parts, colors, err := parseConfiguratorFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	updates := models.AdminModelUpdate{}
	if title := c.PostForm("title"); title != "" {
		updates.Title = &title
	}
	if description, ok := c.GetPostForm("description"); ok {
		updates.Description = &sql.NullString{String: description, Valid: description != ""}
	}
	if category := c.PostForm("category"); category != "" {
		updates.Category = &category
	}
	if visible, ok := c.GetPostForm("visible"); ok {
		v := visible == "true"
		updates.Visible = &v
	}

	if modelFiles := form.File["model"]; len(modelFiles) > 0 {
		glbPath, err := h.saveUpload(modelFiles[0], id.String(), storage.KindModel)
		if err != nil {
			h.log.Error("failed to save model file", "model_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update model"})
			return
		}
		updates.GLBPath = &glbPath
	}

	model, ok := h.catalog.UpdateAdminModel(id, updates)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}

	if parts != nil || colors != nil {
		metaUpdate := models.ConfiguratorMetadataUpdate{Parts: parts, Colors: colors}
		if _, ok := h.catalog.UpdateConfiguratorMetadata(id, metaUpdate); !ok {
			h.catalog.CreateConfiguratorMetadata(id, metaUpdate)
		}
	}
	h.attachTextures(c, id, form.File["textures"])

	c.JSON(http.StatusOK, model)
}

// Patch is the narrow visibility-only toggle used from the admin list view.
func (h *AdminModelsHandler) Patch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}

	var req models.PatchModelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Visible == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "visible is required"})
		return
	}

	model, ok := h.catalog.UpdateAdminModel(id, models.AdminModelUpdate{Visible: req.Visible})
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}
	c.JSON(http.StatusOK, model)
}

// Delete removes the catalog entry with its configurator and texture
// records, then the on-disk directories. A missing entry answers not-found
// without touching disk.
func (h *AdminModelsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}

	if !h.catalog.DeleteAdminModel(id) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "model not found"})
		return
	}
	h.files.CleanupAdminModel(id.String())

	h.log.Info("admin model deleted", "model_id", id)
	c.JSON(http.StatusOK, models.CleanupResponse{Success: true})
}

func (h *AdminModelsHandler) saveUpload(fileHeader *multipart.FileHeader, modelID, kind string) (string, error) {
	if fileHeader.Size > h.maxBytes {
		return "", fmt.Errorf("file %s exceeds maximum upload size", fileHeader.Filename)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return h.files.SaveAdminFile(data, fileHeader.Filename, modelID, kind)
}

// attachTextures appends texture records for the supplied files. Individual
// failures are logged and skipped so one bad texture cannot fail the model
// operation that carried it.
func (h *AdminModelsHandler) attachTextures(c *gin.Context, modelID uuid.UUID, textureFiles []*multipart.FileHeader) {
	if len(textureFiles) > maxTextureFiles {
		textureFiles = textureFiles[:maxTextureFiles]
	}
	for _, fileHeader := range textureFiles {
		texturePath, err := h.saveUpload(fileHeader, modelID.String(), storage.KindTexture)
		if err != nil {
			h.log.Warn("failed to save texture", "model_id", modelID, "file", fileHeader.Filename, "error", err)
			continue
		}
		h.catalog.CreateModelTexture(modelID, fileHeader.Filename, "diffuse", texturePath)
	}
}

// parseConfiguratorFields reads the optional parts/colors JSON arrays from
// the form. A nil slice means the field was absent.
func parseConfiguratorFields(c *gin.Context) (parts, colors []string, err error) {
	if raw, ok := c.GetPostForm("parts"); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return nil, nil, fmt.Errorf("parts must be a JSON array of strings")
		}
	}
	if raw, ok := c.GetPostForm("colors"); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &colors); err != nil {
			return nil, nil, fmt.Errorf("colors must be a JSON array of strings")
		}
	}
	return parts, colors, nil
}
