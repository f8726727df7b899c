package store_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/models"
	"ar-viewer-backend/internal/storage"
	"ar-viewer-backend/internal/store"
)

func newCatalog(t *testing.T) (*store.CatalogStore, *storage.FileStore) {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir(), logger.NewNop())
	require.NoError(t, err)
	return store.NewCatalogStore(files, logger.NewNop()), files
}

func createModel(t *testing.T, catalog *store.CatalogStore, files *storage.FileStore, title string) models.AdminModel {
	t.Helper()
	in := store.CreateAdminModel{Title: title}
	glbPath, err := files.SaveAdminFile([]byte("glb"), "asset.glb", "staging", storage.KindModel)
	require.NoError(t, err)
	in.GLBPath = glbPath
	return catalog.CreateAdminModel(in)
}

func TestCreateAdminModel_Defaults(t *testing.T) {
	catalog, files := newCatalog(t)

	model := createModel(t, catalog, files, "Chair")

	assert.Equal(t, "Chair", model.Title)
	assert.Equal(t, "General", model.Category)
	assert.True(t, model.Visible)
	assert.Nil(t, model.Description)
	assert.Nil(t, model.USDZPath)
	assert.NotEmpty(t, model.GLBPath)
	assert.Equal(t, model.CreatedAt, model.UpdatedAt)
}

func TestGetAllAdminModels_NewestFirst(t *testing.T) {
	catalog, files := newCatalog(t)

	first := createModel(t, catalog, files, "first")
	second := createModel(t, catalog, files, "second")
	third := createModel(t, catalog, files, "third")

	all := catalog.GetAllAdminModels()
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)
}

func TestVisibilityFiltering(t *testing.T) {
	catalog, files := newCatalog(t)

	shown := createModel(t, catalog, files, "shown")
	hidden := createModel(t, catalog, files, "hidden")

	off := false
	_, ok := catalog.UpdateAdminModel(hidden.ID, models.AdminModelUpdate{Visible: &off})
	require.True(t, ok)

	public := catalog.GetPublicAdminModels()
	require.Len(t, public, 1)
	assert.Equal(t, shown.ID, public[0].ID)
	assert.Len(t, catalog.GetAllAdminModels(), 2)

	// Toggling back moves it across the boundary without touching fields.
	on := true
	updated, ok := catalog.UpdateAdminModel(hidden.ID, models.AdminModelUpdate{Visible: &on})
	require.True(t, ok)
	assert.Equal(t, "hidden", updated.Title)
	assert.Len(t, catalog.GetPublicAdminModels(), 2)
}

func TestUpdateAdminModel_PartialSemantics(t *testing.T) {
	catalog, files := newCatalog(t)

	model := createModel(t, catalog, files, "Lamp")
	desc := "a lamp"
	_, ok := catalog.UpdateAdminModel(model.ID, models.AdminModelUpdate{
		Description: &sql.NullString{String: desc, Valid: true},
	})
	require.True(t, ok)

	// A visibility-only update leaves everything else alone.
	off := false
	updated, ok := catalog.UpdateAdminModel(model.ID, models.AdminModelUpdate{Visible: &off})
	require.True(t, ok)
	assert.Equal(t, "Lamp", updated.Title)
	assert.Equal(t, "General", updated.Category)
	assert.Equal(t, model.GLBPath, updated.GLBPath)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)
	assert.False(t, updated.Visible)

	// An explicit null clears the description; omitting it leaves it intact.
	updated, ok = catalog.UpdateAdminModel(model.ID, models.AdminModelUpdate{
		Description: &sql.NullString{Valid: false},
	})
	require.True(t, ok)
	assert.Nil(t, updated.Description)

	title := "Floor Lamp"
	updated, ok = catalog.UpdateAdminModel(model.ID, models.AdminModelUpdate{Title: &title})
	require.True(t, ok)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "Floor Lamp", updated.Title)
}

func TestUpdateAdminModel_UnknownID(t *testing.T) {
	catalog, _ := newCatalog(t)
	title := "x"
	_, ok := catalog.UpdateAdminModel(uuid.New(), models.AdminModelUpdate{Title: &title})
	assert.False(t, ok)
}

func TestDeleteAdminModel_Cascades(t *testing.T) {
	catalog, files := newCatalog(t)

	model := createModel(t, catalog, files, "Sofa")
	catalog.CreateConfiguratorMetadata(model.ID, models.ConfiguratorMetadataUpdate{
		Parts:  []string{"seat", "legs"},
		Colors: []string{"#ff0000"},
	})
	catalog.CreateModelTexture(model.ID, "fabric.png", "diffuse", "/uploads/admin-textures/x/fabric.png")
	catalog.CreateModelTexture(model.ID, "leather.png", "diffuse", "/uploads/admin-textures/x/leather.png")

	assert.True(t, catalog.DeleteAdminModel(model.ID))

	_, ok := catalog.GetAdminModel(model.ID)
	assert.False(t, ok)
	_, ok = catalog.GetConfiguratorMetadata(model.ID)
	assert.False(t, ok)
	assert.Empty(t, catalog.GetModelTextures(model.ID))

	assert.False(t, catalog.DeleteAdminModel(model.ID))
}

func TestRestartDurability(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir(), logger.NewNop())
	require.NoError(t, err)
	catalog := store.NewCatalogStore(files, logger.NewNop())

	desc := "survives restarts"
	off := false
	in := store.CreateAdminModel{
		Title:       "Table",
		Description: &desc,
		Category:    "Furniture",
		Visible:     &off,
	}
	glbPath, err := files.SaveAdminFile([]byte("glb"), "table.glb", "staging", storage.KindModel)
	require.NoError(t, err)
	in.GLBPath = glbPath
	model := catalog.CreateAdminModel(in)
	catalog.CreateConfiguratorMetadata(model.ID, models.ConfiguratorMetadataUpdate{Parts: []string{"top"}})

	// Simulated restart: a fresh store over the same uploads root.
	reloaded := store.NewCatalogStore(files, logger.NewNop())
	require.NoError(t, reloaded.LoadFromDisk())

	got, ok := reloaded.GetAdminModel(model.ID)
	require.True(t, ok)
	assert.Equal(t, model.Title, got.Title)
	assert.Equal(t, model.Category, got.Category)
	assert.Equal(t, model.Visible, got.Visible)
	assert.Equal(t, model.GLBPath, got.GLBPath)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)

	// Configurator metadata is memory-only and does not survive.
	_, ok = reloaded.GetConfiguratorMetadata(model.ID)
	assert.False(t, ok)
}

func TestLoadFromDisk_SkipsDanglingMetadata(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir(), logger.NewNop())
	require.NoError(t, err)
	catalog := store.NewCatalogStore(files, logger.NewNop())

	kept := createModel(t, catalog, files, "kept")

	gone := createModel(t, catalog, files, "gone")
	require.NoError(t, os.Remove(files.AbsolutePath(gone.GLBPath)))

	reloaded := store.NewCatalogStore(files, logger.NewNop())
	require.NoError(t, reloaded.LoadFromDisk())

	_, ok := reloaded.GetAdminModel(kept.ID)
	assert.True(t, ok)
	_, ok = reloaded.GetAdminModel(gone.ID)
	assert.False(t, ok, "metadata with a missing asset must not be admitted")
}

func TestConfiguratorMetadata_CreateAndUpdate(t *testing.T) {
	catalog, files := newCatalog(t)
	model := createModel(t, catalog, files, "Desk")

	meta := catalog.CreateConfiguratorMetadata(model.ID, models.ConfiguratorMetadataUpdate{})
	assert.Equal(t, model.ID, meta.ModelID)
	assert.Empty(t, meta.Parts)
	assert.NotNil(t, meta.Textures)
	assert.NotNil(t, meta.Materials)
	assert.Empty(t, meta.Colors)

	updated, ok := catalog.UpdateConfiguratorMetadata(model.ID, models.ConfiguratorMetadataUpdate{
		Parts: []string{"drawer"},
	})
	require.True(t, ok)
	assert.Equal(t, []string{"drawer"}, updated.Parts)
	assert.Empty(t, updated.Colors, "omitted collections are retained")

	_, ok = catalog.UpdateConfiguratorMetadata(uuid.New(), models.ConfiguratorMetadataUpdate{})
	assert.False(t, ok)
}

func TestMetadataMirrorWrittenOnUpdate(t *testing.T) {
	catalog, files := newCatalog(t)
	model := createModel(t, catalog, files, "Bench")

	metaPath := filepath.Join(files.ModelDir(model.ID.String()), "metadata.json")
	info, err := os.Stat(metaPath)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	title := "Garden Bench"
	_, ok := catalog.UpdateAdminModel(model.ID, models.AdminModelUpdate{Title: &title})
	require.True(t, ok)

	updatedInfo, err := os.Stat(metaPath)
	require.NoError(t, err)
	assert.True(t, updatedInfo.ModTime().After(info.ModTime()) || updatedInfo.Size() != info.Size())
}
