package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/storage"
)

func newFileStore(t *testing.T) *storage.FileStore {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir(), logger.NewNop())
	require.NoError(t, err)
	return files
}

func TestNewFileStore_CreatesLayout(t *testing.T) {
	root := t.TempDir()
	files, err := storage.NewFileStore(root, logger.NewNop())
	require.NoError(t, err)

	for _, dir := range []string{"temp", "admin-models", "admin-textures"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Re-running the directory setup is a no-op.
	require.NoError(t, files.EnsureDirectories())
}

func TestSaveTempFile(t *testing.T) {
	files := newFileStore(t)

	path, err := files.SaveTempFile([]byte("stl-bytes"), "part.stl", "session-a")
	require.NoError(t, err)

	assert.Equal(t, files.SessionDir("session-a"), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_part.stl"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stl-bytes", string(data))
}

func TestSaveAdminFile_ReturnsPublicPath(t *testing.T) {
	files := newFileStore(t)

	modelPath, err := files.SaveAdminFile([]byte("model"), "chair.glb", "model-1", storage.KindModel)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(modelPath, "/uploads/admin-models/model-1/"))

	texturePath, err := files.SaveAdminFile([]byte("texture"), "wood.png", "model-1", storage.KindTexture)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(texturePath, "/uploads/admin-textures/model-1/"))

	// The public path maps back to a real file.
	_, err = os.Stat(files.AbsolutePath(modelPath))
	require.NoError(t, err)
}

func TestCleanupTempSession(t *testing.T) {
	files := newFileStore(t)

	_, err := files.SaveTempFile([]byte("x"), "a.glb", "session-b")
	require.NoError(t, err)

	files.CleanupTempSession("session-b")
	_, err = os.Stat(files.SessionDir("session-b"))
	assert.True(t, os.IsNotExist(err))

	// Cleaning a session that no longer exists is a silent no-op.
	files.CleanupTempSession("session-b")
	files.CleanupTempSession("never-existed")
}

func TestCleanupAdminModel(t *testing.T) {
	files := newFileStore(t)

	_, err := files.SaveAdminFile([]byte("m"), "a.glb", "model-2", storage.KindModel)
	require.NoError(t, err)
	_, err = files.SaveAdminFile([]byte("t"), "b.png", "model-2", storage.KindTexture)
	require.NoError(t, err)

	files.CleanupAdminModel("model-2")
	_, err = os.Stat(files.ModelDir("model-2"))
	assert.True(t, os.IsNotExist(err))

	files.CleanupAdminModel("model-2")
}

func TestCleanupExpiredTempUploads(t *testing.T) {
	files := newFileStore(t)

	_, err := files.SaveTempFile([]byte("old"), "old.glb", "stale-session")
	require.NoError(t, err)
	_, err = files.SaveTempFile([]byte("new"), "new.glb", "fresh-session")
	require.NoError(t, err)

	staleDir := files.SessionDir("stale-session")
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(staleDir, old, old))

	files.CleanupExpiredTempUploads(24 * time.Hour)

	_, err = os.Stat(staleDir)
	assert.True(t, os.IsNotExist(err), "expired session dir should be removed")
	_, err = os.Stat(files.SessionDir("fresh-session"))
	assert.NoError(t, err, "fresh session dir should survive the sweep")
}
