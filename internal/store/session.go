package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ar-viewer-backend/internal/models"
)

// CreateTempUpload carries the fields for a new temp upload record. Status
// defaults to pending when unset.
type CreateTempUpload struct {
	SessionID        string
	OriginalFileName string
	OriginalPath     string
	GLBPath          *string
	USDZPath         *string
	DeviceType       models.DeviceType
	Status           models.ConversionStatus
}

// SessionStore owns the lifetime of temporary per-browser-session uploads.
// Records are memory-only; the backing files under temp/<sessionId> are
// always created and removed in the same operation as the record.
type SessionStore struct {
	mu      sync.RWMutex
	uploads map[uuid.UUID]models.TempUpload
}

func NewSessionStore() *SessionStore {
	return &SessionStore{uploads: make(map[uuid.UUID]models.TempUpload)}
}

// Create allocates an id and stores the record.
func (s *SessionStore) Create(in CreateTempUpload) models.TempUpload {
	upload := models.TempUpload{
		ID:               uuid.New(),
		SessionID:        in.SessionID,
		OriginalFileName: in.OriginalFileName,
		OriginalPath:     in.OriginalPath,
		GLBPath:          in.GLBPath,
		USDZPath:         in.USDZPath,
		DeviceType:       in.DeviceType,
		Status:           in.Status,
		CreatedAt:        time.Now(),
	}
	if upload.Status == "" {
		upload.Status = models.StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[upload.ID] = upload
	return upload
}

// Get returns one record by id.
func (s *SessionStore) Get(id uuid.UUID) (models.TempUpload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	upload, ok := s.uploads[id]
	return upload, ok
}

// GetBySession returns all records tagged with the session. After the
// replace-on-new-upload policy this is normally zero or one.
func (s *SessionStore) GetBySession(sessionID string) []models.TempUpload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.TempUpload, 0, 1)
	for _, upload := range s.uploads {
		if upload.SessionID == sessionID {
			result = append(result, upload)
		}
	}
	return result
}

// Delete removes one record by id.
func (s *SessionStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[id]; !ok {
		return false
	}
	delete(s.uploads, id)
	return true
}

// DeleteBySession removes all records for a session. Always succeeds, even
// when nothing existed, so teardown stays idempotent.
func (s *SessionStore) DeleteBySession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, upload := range s.uploads {
		if upload.SessionID == sessionID {
			delete(s.uploads, id)
		}
	}
	return true
}

// Expired returns records older than maxAge. Used by the sweep alongside the
// file store's directory scan; each side tolerates the other having already
// cleaned up.
func (s *SessionStore) Expired(maxAge time.Duration) []models.TempUpload {
	cutoff := time.Now().Add(-maxAge)

	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.TempUpload, 0)
	for _, upload := range s.uploads {
		if upload.CreatedAt.Before(cutoff) {
			result = append(result, upload)
		}
	}
	return result
}
