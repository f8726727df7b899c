package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// AdminModel is a permanently cataloged 3D asset curated by an admin,
// distinct from anonymous per-session uploads. GLBPath is always set once
// the model exists; the nullable pointers round-trip as JSON null in the
// on-disk metadata mirror.
type AdminModel struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Category      string    `json:"category"`
	Visible       bool      `json:"visible"`
	GLBPath       string    `json:"glbPath"`
	USDZPath      *string   `json:"usdzPath"`
	ThumbnailPath *string   `json:"thumbnailPath"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AdminModelUpdate is a partial update. A nil pointer leaves the field
// untouched; for the nullable fields, a non-nil sql.NullString with
// Valid=false clears the stored value.
type AdminModelUpdate struct {
	Title         *string
	Description   *sql.NullString
	Category      *string
	Visible       *bool
	GLBPath       *string
	USDZPath      *sql.NullString
	ThumbnailPath *sql.NullString
}

// ConfiguratorMetadata holds the parts/colors/materials/textures an admin
// model exposes to the customization UI. One per model.
type ConfiguratorMetadata struct {
	ID        uuid.UUID           `json:"id"`
	ModelID   uuid.UUID           `json:"modelId"`
	Parts     []string            `json:"parts"`
	Textures  map[string][]string `json:"textures"`
	Materials map[string][]string `json:"materials"`
	Colors    []string            `json:"colors"`
}

// ConfiguratorMetadataUpdate replaces only the provided collections.
type ConfiguratorMetadataUpdate struct {
	Parts     []string
	Textures  map[string][]string
	Materials map[string][]string
	Colors    []string
}

type ModelTexture struct {
	ID        uuid.UUID `json:"id"`
	ModelID   uuid.UUID `json:"modelId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	FilePath  string    `json:"filePath"`
	CreatedAt time.Time `json:"createdAt"`
}
