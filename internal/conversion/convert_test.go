package conversion_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ar-viewer-backend/internal/conversion"
	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/models"
	"ar-viewer-backend/internal/storage"
)

func newConverter(t *testing.T) (*conversion.Converter, *storage.FileStore) {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir(), logger.NewNop())
	require.NoError(t, err)
	return conversion.NewConverter(files), files
}

func TestIsSupported3DFormat(t *testing.T) {
	supported := []string{"chair.glb", "chair.gltf", "chair.obj", "chair.fbx", "chair.stl", "CHAIR.GLB", "chair.Stl"}
	for _, name := range supported {
		assert.True(t, conversion.IsSupported3DFormat(name), name)
	}

	unsupported := []string{"chair.psd", "chair.png", "chair", "chair.glb.txt", ""}
	for _, name := range unsupported {
		assert.False(t, conversion.IsSupported3DFormat(name), name)
	}
}

func TestConvert_ProducesGLBArtifact(t *testing.T) {
	converter, files := newConverter(t)

	input, err := files.SaveTempFile([]byte("glb-bytes"), "chair.glb", "session-1")
	require.NoError(t, err)

	result := converter.Convert(input, files.SessionDir("session-1"), models.DeviceAndroid, "model_1")
	require.True(t, result.Success, result.Error)

	assert.True(t, strings.HasPrefix(result.GLBPath, "/uploads/temp/session-1/"))
	assert.True(t, strings.HasSuffix(result.GLBPath, "model_1.glb"))
	assert.Empty(t, result.USDZPath)

	data, err := os.ReadFile(files.AbsolutePath(result.GLBPath))
	require.NoError(t, err)
	assert.Equal(t, "glb-bytes", string(data))
}

func TestConvert_USDZForIOSProfiles(t *testing.T) {
	converter, files := newConverter(t)

	for _, deviceType := range []models.DeviceType{models.DeviceIOS, models.DeviceBoth} {
		input, err := files.SaveTempFile([]byte("obj-bytes"), "chair.obj", "s")
		require.NoError(t, err)

		result := converter.Convert(input, files.SessionDir("s"), deviceType, "model_2")
		require.True(t, result.Success, result.Error)
		assert.Equal(t, result.GLBPath, result.USDZPath)
	}
}

func TestConvert_UnsupportedExtension(t *testing.T) {
	converter, files := newConverter(t)

	result := converter.Convert("input.psd", files.SessionDir("s"), models.DeviceAndroid, "model_3")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported format")
}

func TestConvert_MissingInputFails(t *testing.T) {
	converter, files := newConverter(t)

	missing := filepath.Join(files.SessionDir("s"), "ghost.glb")
	result := converter.Convert(missing, files.SessionDir("s"), models.DeviceAndroid, "model_4")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}
