package handlers

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"ar-viewer-backend/internal/conversion"
	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/models"
	"ar-viewer-backend/internal/storage"
	"ar-viewer-backend/internal/store"
)

// UploadHandler runs the anonymous upload-session lifecycle: intake,
// replace-on-new-upload, conversion, and explicit teardown.
type UploadHandler struct {
	sessions  *store.SessionStore
	files     *storage.FileStore
	converter *conversion.Converter
	maxBytes  int64
	log       *logger.Logger

	// sessionLocks serializes the delete-then-create sequence per session so
	// a concurrent second upload for the same session cannot tear state.
	sessionLocks sync.Map
}

func NewUploadHandler(sessions *store.SessionStore, files *storage.FileStore, converter *conversion.Converter, maxBytes int64, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		sessions:  sessions,
		files:     files,
		converter: converter,
		maxBytes:  maxBytes,
		log:       log,
	}
}

func (h *UploadHandler) lockSession(sessionID string) func() {
	v, _ := h.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Upload accepts a multipart model file plus deviceType and sessionId,
// converts it, and records the session's single live upload. Validation
// failures reject before any state is touched.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("model")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no file uploaded"})
		return
	}

	if !conversion.IsSupported3DFormat(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unsupported file format"})
		return
	}

	sessionID := c.PostForm("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "session ID is required"})
		return
	}

	deviceType := models.DeviceType(c.PostForm("deviceType"))
	if deviceType == "" {
		deviceType = models.DeviceAndroid
	}
	if !deviceType.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid device type"})
		return
	}

	if fileHeader.Size > h.maxBytes {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "file too large",
			Message: fmt.Sprintf("maximum upload size is %d bytes", h.maxBytes),
		})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read upload"})
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read upload"})
		return
	}

	unlock := h.lockSession(sessionID)
	defer unlock()

	// Replace any prior upload for this session: record and directory go
	// together, otherwise one of them leaks.
	h.files.CleanupTempSession(sessionID)
	h.sessions.DeleteBySession(sessionID)

	inputPath, err := h.files.SaveTempFile(data, fileHeader.Filename, sessionID)
	if err != nil {
		h.log.Error("failed to save temp file", "session_id", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to process upload"})
		return
	}

	outputDir := h.files.SessionDir(sessionID)
	baseName := fmt.Sprintf("model_%d", time.Now().UnixMilli())

	result := h.converter.Convert(inputPath, outputDir, deviceType, baseName)
	if !result.Success {
		h.log.Warn("conversion failed", "session_id", sessionID, "file", fileHeader.Filename, "error", result.Error)
		msg := result.Error
		if msg == "" {
			msg = "conversion failed"
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msg})
		return
	}

	upload := h.sessions.Create(store.CreateTempUpload{
		SessionID:        sessionID,
		OriginalFileName: fileHeader.Filename,
		OriginalPath:     inputPath,
		GLBPath:          optional(result.GLBPath),
		USDZPath:         optional(result.USDZPath),
		DeviceType:       deviceType,
		Status:           models.StatusReady,
	})

	h.log.Info("upload converted", "session_id", sessionID, "upload_id", upload.ID, "device_type", deviceType)
	c.JSON(http.StatusOK, models.UploadResponse{
		ID:         upload.ID.String(),
		Status:     models.StatusReady,
		GLBPath:    result.GLBPath,
		USDZPath:   result.USDZPath,
		DeviceType: deviceType,
	})
}

// CleanupSession tears down a session's record and temp directory. It backs
// both the explicit DELETE and the page-unload beacon, so it must stay
// idempotent and safe to call with nothing to remove.
func (h *UploadHandler) CleanupSession(c *gin.Context) {
	sessionID := c.Param("sessionId")

	unlock := h.lockSession(sessionID)
	defer unlock()

	h.sessions.DeleteBySession(sessionID)
	h.files.CleanupTempSession(sessionID)

	c.JSON(http.StatusOK, models.CleanupResponse{Success: true})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
