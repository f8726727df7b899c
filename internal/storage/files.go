package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ar-viewer-backend/internal/logger"
)

// Kind of admin asset, selecting the directory tree a file lands in.
const (
	KindModel   = "model"
	KindTexture = "texture"
)

const (
	tempDirName     = "temp"
	modelsDirName   = "admin-models"
	texturesDirName = "admin-textures"

	// PublicMount is the URL prefix the uploads root is served under.
	PublicMount = "/uploads"
)

// FileStore owns the on-disk layout for temp session files, permanent admin
// model files, and textures. It is stateless; ownership of the files is
// tracked by the repositories that reference them.
type FileStore struct {
	root string
	log  *logger.Logger
}

func NewFileStore(root string, log *logger.Logger) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("uploads root is required")
	}
	fs := &FileStore{root: root, log: log}
	if err := fs.EnsureDirectories(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Root returns the uploads root directory.
func (f *FileStore) Root() string {
	return f.root
}

// EnsureDirectories creates the temp, admin-models and admin-textures roots.
// Safe to call repeatedly and concurrently.
func (f *FileStore) EnsureDirectories() error {
	for _, dir := range []string{
		filepath.Join(f.root, tempDirName),
		filepath.Join(f.root, modelsDirName),
		filepath.Join(f.root, texturesDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

// TempDir returns the root of the per-session temp tree.
func (f *FileStore) TempDir() string {
	return filepath.Join(f.root, tempDirName)
}

// SessionDir returns the temp directory for one upload session.
func (f *FileStore) SessionDir(sessionID string) string {
	return filepath.Join(f.root, tempDirName, safeName(sessionID))
}

// ModelsDir returns the root of the permanent admin model tree.
func (f *FileStore) ModelsDir() string {
	return filepath.Join(f.root, modelsDirName)
}

// ModelDir returns the permanent asset directory for an admin model. The
// catalog's metadata mirror lives here alongside the asset files.
func (f *FileStore) ModelDir(modelID string) string {
	return filepath.Join(f.root, modelsDirName, safeName(modelID))
}

// SaveTempFile writes an uploaded file under temp/<sessionId> and returns
// its absolute path. Filenames are timestamp-prefixed so multiple files in
// one session directory cannot collide.
func (f *FileStore) SaveTempFile(data []byte, originalName, sessionID string) (string, error) {
	sessionDir := f.SessionDir(sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	filename := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), safeName(originalName))
	path := filepath.Join(sessionDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return path, nil
}

// SaveAdminFile writes a permanent asset under the model's directory and
// returns its public path rooted at the /uploads mount.
func (f *FileStore) SaveAdminFile(data []byte, originalName, modelID, kind string) (string, error) {
	baseDir := modelsDirName
	if kind == KindTexture {
		baseDir = texturesDirName
	}
	modelDir := filepath.Join(f.root, baseDir, safeName(modelID))
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}

	filename := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), safeName(originalName))
	path := filepath.Join(modelDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write admin file: %w", err)
	}
	return f.PublicPath(path), nil
}

// PublicPath maps an absolute path inside the uploads root to its public
// /uploads URL path.
func (f *FileStore) PublicPath(absPath string) string {
	rel, err := filepath.Rel(f.root, absPath)
	if err != nil {
		return PublicMount + "/" + filepath.Base(absPath)
	}
	return PublicMount + "/" + filepath.ToSlash(rel)
}

// AbsolutePath maps a public /uploads path back to a filesystem path.
func (f *FileStore) AbsolutePath(publicPath string) string {
	rel := strings.TrimPrefix(publicPath, PublicMount+"/")
	return filepath.Join(f.root, filepath.FromSlash(rel))
}

// CleanupTempSession removes a session's temp directory. A missing directory
// is a no-op; failures are logged, never returned, so cleanup cannot fail
// the request that triggered it.
func (f *FileStore) CleanupTempSession(sessionID string) {
	dir := f.SessionDir(sessionID)
	if err := os.RemoveAll(dir); err != nil {
		f.log.Warn("failed to clean up temp session", "session_id", sessionID, "error", err)
	}
}

// CleanupAdminModel removes a model's asset and texture directories.
// Best-effort, same policy as CleanupTempSession.
func (f *FileStore) CleanupAdminModel(modelID string) {
	id := safeName(modelID)
	for _, dir := range []string{
		filepath.Join(f.root, modelsDirName, id),
		filepath.Join(f.root, texturesDirName, id),
	} {
		if err := os.RemoveAll(dir); err != nil {
			f.log.Warn("failed to clean up admin model dir", "model_id", modelID, "dir", dir, "error", err)
		}
	}
}

// CleanupExpiredTempUploads removes session directories whose mtime is older
// than maxAge. It is the backstop for sessions that never sent an explicit
// teardown signal. A directory vanishing mid-sweep is treated as success.
func (f *FileStore) CleanupExpiredTempUploads(maxAge time.Duration) {
	entries, err := os.ReadDir(f.TempDir())
	if err != nil {
		f.log.Warn("failed to scan temp dir", "error", err)
		return
	}

	now := time.Now()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		dir := filepath.Join(f.TempDir(), entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			f.log.Warn("failed to remove expired temp dir", "dir", dir, "error", err)
			continue
		}
		f.log.Info("cleaned up expired temp directory", "session_id", entry.Name())
	}
}

// safeName strips path separators so caller-supplied identifiers cannot
// escape their directory.
func safeName(name string) string {
	name = filepath.Base(filepath.Clean(name))
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
