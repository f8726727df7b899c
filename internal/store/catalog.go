package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/models"
	"ar-viewer-backend/internal/storage"
)

const metadataFileName = "metadata.json"

// CreateAdminModel carries the fields for a new catalog entry. Zero values
// get the catalog defaults: category "General", visible true.
type CreateAdminModel struct {
	// ID is the pre-allocated model id when the caller already placed files
	// under its directory; zero means allocate a fresh one.
	ID            uuid.UUID
	Title         string
	Description   *string
	Category      string
	Visible       *bool
	GLBPath       string
	USDZPath      *string
	ThumbnailPath *string
}

// CatalogStore owns the lifetime of admin models, their configurator
// metadata and texture records. Model records are mirrored to a per-model
// metadata.json on disk; configurator and texture records are memory-only.
// All read-modify-write sequences run under one mutex so a mirror write
// cannot interleave with a concurrent update of the same id.
type CatalogStore struct {
	mu sync.RWMutex

	adminModels         map[uuid.UUID]models.AdminModel
	insertionSeq        map[uuid.UUID]uint64
	nextSeq             uint64
	configurators       map[uuid.UUID]models.ConfiguratorMetadata
	configuratorByModel map[uuid.UUID]uuid.UUID
	textures            map[uuid.UUID]models.ModelTexture

	files *storage.FileStore
	log   *logger.Logger
}

func NewCatalogStore(files *storage.FileStore, log *logger.Logger) *CatalogStore {
	return &CatalogStore{
		adminModels:         make(map[uuid.UUID]models.AdminModel),
		insertionSeq:        make(map[uuid.UUID]uint64),
		configurators:       make(map[uuid.UUID]models.ConfiguratorMetadata),
		configuratorByModel: make(map[uuid.UUID]uuid.UUID),
		textures:            make(map[uuid.UUID]models.ModelTexture),
		files:               files,
		log:                 log,
	}
}

// LoadFromDisk rebuilds the in-memory model catalog from the admin-models
// tree. A metadata file whose primary asset no longer exists is skipped, so
// the catalog never serves dangling references after a partial failure or a
// manual file deletion.
func (s *CatalogStore) LoadFromDisk() error {
	entries, err := os.ReadDir(s.files.ModelsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scan admin-models dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		metaPath := filepath.Join(s.files.ModelsDir(), entry.Name(), metadataFileName)
		data, err := os.ReadFile(metaPath)
		if err != nil {
			if !os.IsNotExist(err) {
				s.log.Warn("unreadable model metadata", "dir", entry.Name(), "error", err)
			}
			continue
		}

		var model models.AdminModel
		if err := json.Unmarshal(data, &model); err != nil {
			s.log.Warn("corrupt model metadata, skipping", "dir", entry.Name(), "error", err)
			continue
		}
		if _, err := os.Stat(s.files.AbsolutePath(model.GLBPath)); err != nil {
			s.log.Warn("model asset missing on disk, skipping", "model_id", model.ID, "glb_path", model.GLBPath)
			continue
		}

		s.adminModels[model.ID] = model
		s.nextSeq++
		s.insertionSeq[model.ID] = s.nextSeq
		loaded++
	}

	if loaded > 0 {
		s.log.Info("loaded admin models from disk", "count", loaded)
	}
	return nil
}

// CreateAdminModel allocates a fresh id, applies defaults, and mirrors the
// record to disk. The mirror write is best-effort: on failure the in-memory
// record stays authoritative for this process's lifetime.
func (s *CatalogStore) CreateAdminModel(in CreateAdminModel) models.AdminModel {
	now := time.Now()
	id := in.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	model := models.AdminModel{
		ID:            id,
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Visible:       true,
		GLBPath:       in.GLBPath,
		USDZPath:      in.USDZPath,
		ThumbnailPath: in.ThumbnailPath,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if model.Category == "" {
		model.Category = "General"
	}
	if in.Visible != nil {
		model.Visible = *in.Visible
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminModels[model.ID] = model
	s.nextSeq++
	s.insertionSeq[model.ID] = s.nextSeq
	s.mirrorLocked(model)
	return model
}

// GetAdminModel returns a model by id.
func (s *CatalogStore) GetAdminModel(id uuid.UUID) (models.AdminModel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.adminModels[id]
	return model, ok
}

// GetAllAdminModels returns every model, newest first. Equal timestamps keep
// insertion order.
func (s *CatalogStore) GetAllAdminModels() []models.AdminModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedModelsLocked(func(models.AdminModel) bool { return true })
}

// GetPublicAdminModels returns visible models, newest first.
func (s *CatalogStore) GetPublicAdminModels() []models.AdminModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedModelsLocked(func(m models.AdminModel) bool { return m.Visible })
}

// UpdateAdminModel merges the provided fields over the existing record,
// bumps updatedAt and re-mirrors to disk. Returns false if the id is
// unknown.
func (s *CatalogStore) UpdateAdminModel(id uuid.UUID, updates models.AdminModelUpdate) (models.AdminModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	model, ok := s.adminModels[id]
	if !ok {
		return models.AdminModel{}, false
	}

	if updates.Title != nil {
		model.Title = *updates.Title
	}
	if updates.Description != nil {
		model.Description = nullableString(*updates.Description)
	}
	if updates.Category != nil {
		model.Category = *updates.Category
	}
	if updates.Visible != nil {
		model.Visible = *updates.Visible
	}
	if updates.GLBPath != nil {
		model.GLBPath = *updates.GLBPath
	}
	if updates.USDZPath != nil {
		model.USDZPath = nullableString(*updates.USDZPath)
	}
	if updates.ThumbnailPath != nil {
		model.ThumbnailPath = nullableString(*updates.ThumbnailPath)
	}
	model.UpdatedAt = time.Now()

	s.adminModels[id] = model
	s.mirrorLocked(model)
	return model, true
}

// DeleteAdminModel removes the model and cascades to its configurator
// metadata and texture records. Reports whether a model existed. Disk
// cleanup of the asset directories is the caller's responsibility.
func (s *CatalogStore) DeleteAdminModel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.adminModels[id]; !ok {
		return false
	}
	delete(s.adminModels, id)
	delete(s.insertionSeq, id)

	if metaID, ok := s.configuratorByModel[id]; ok {
		delete(s.configurators, metaID)
		delete(s.configuratorByModel, id)
	}
	for texID, tex := range s.textures {
		if tex.ModelID == id {
			delete(s.textures, texID)
		}
	}
	return true
}

// GetConfiguratorMetadata returns the configurator record for a model.
func (s *CatalogStore) GetConfiguratorMetadata(modelID uuid.UUID) (models.ConfiguratorMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metaID, ok := s.configuratorByModel[modelID]
	if !ok {
		return models.ConfiguratorMetadata{}, false
	}
	meta := s.configurators[metaID]
	return meta, true
}

// CreateConfiguratorMetadata creates the one-per-model configurator record.
// Nil collections default to empty.
func (s *CatalogStore) CreateConfiguratorMetadata(modelID uuid.UUID, update models.ConfiguratorMetadataUpdate) models.ConfiguratorMetadata {
	meta := models.ConfiguratorMetadata{
		ID:        uuid.New(),
		ModelID:   modelID,
		Parts:     update.Parts,
		Textures:  update.Textures,
		Materials: update.Materials,
		Colors:    update.Colors,
	}
	if meta.Parts == nil {
		meta.Parts = []string{}
	}
	if meta.Textures == nil {
		meta.Textures = map[string][]string{}
	}
	if meta.Materials == nil {
		meta.Materials = map[string][]string{}
	}
	if meta.Colors == nil {
		meta.Colors = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.configurators[meta.ID] = meta
	s.configuratorByModel[modelID] = meta.ID
	return meta
}

// UpdateConfiguratorMetadata replaces only the provided collections.
func (s *CatalogStore) UpdateConfiguratorMetadata(modelID uuid.UUID, update models.ConfiguratorMetadataUpdate) (models.ConfiguratorMetadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metaID, ok := s.configuratorByModel[modelID]
	if !ok {
		return models.ConfiguratorMetadata{}, false
	}
	meta := s.configurators[metaID]
	if update.Parts != nil {
		meta.Parts = update.Parts
	}
	if update.Textures != nil {
		meta.Textures = update.Textures
	}
	if update.Materials != nil {
		meta.Materials = update.Materials
	}
	if update.Colors != nil {
		meta.Colors = update.Colors
	}
	s.configurators[metaID] = meta
	return meta, true
}

// GetModelTextures returns all texture records attached to a model.
func (s *CatalogStore) GetModelTextures(modelID uuid.UUID) []models.ModelTexture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ModelTexture, 0)
	for _, tex := range s.textures {
		if tex.ModelID == modelID {
			result = append(result, tex)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// CreateModelTexture attaches a texture record to a model.
func (s *CatalogStore) CreateModelTexture(modelID uuid.UUID, name, texType, filePath string) models.ModelTexture {
	tex := models.ModelTexture{
		ID:        uuid.New(),
		ModelID:   modelID,
		Name:      name,
		Type:      texType,
		FilePath:  filePath,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.textures[tex.ID] = tex
	return tex
}

// sortedModelsLocked returns matching models newest-first with insertion
// order as the tiebreak. Callers hold at least the read lock.
func (s *CatalogStore) sortedModelsLocked(match func(models.AdminModel) bool) []models.AdminModel {
	result := make([]models.AdminModel, 0, len(s.adminModels))
	for _, model := range s.adminModels {
		if match(model) {
			result = append(result, model)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return s.insertionSeq[a.ID] > s.insertionSeq[b.ID]
	})
	return result
}

// mirrorLocked writes the model's metadata file with an atomic tmp+rename.
// This is the catalog's only durability path, so failures log at Error, but
// they never fail the operation that triggered them.
func (s *CatalogStore) mirrorLocked(model models.AdminModel) {
	dir := s.files.ModelDir(model.ID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Error("failed to create model metadata dir", "model_id", model.ID, "error", err)
		return
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		s.log.Error("failed to marshal model metadata", "model_id", model.ID, "error", err)
		return
	}

	path := filepath.Join(dir, metadataFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Error("failed to write model metadata", "model_id", model.ID, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.log.Error("failed to replace model metadata", "model_id", model.ID, "error", err)
	}
}

// nullableString maps a NullString update value to the pointer form the
// entity carries: Valid=false clears the field.
func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
