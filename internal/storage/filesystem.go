package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pebblely/internal/domain"
	"pebblely/pkg/zip"
)

// listDepth bounds how far List descends below a subdirectory.
const listDepth = 2

// stagingDir holds in-flight writes under the root, outside every
// subdirectory, so List never sees them and rename stays on one filesystem.
const stagingDir = ".staging"

// FileStore persists images onto the local filesystem, one directory per
// subdirectory bucket.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Store writes data to root/sub/filename, creating the subdirectory on demand
// and replacing any file already stored under the same name.
func (s *FileStore) Store(ctx context.Context, sub domain.Subdirectory, filename string, data []byte) error {
	if s == nil {
		return fmt.Errorf("%w: no store configured", domain.ErrStorage)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := sanitizeKey(filename)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	fullPath := filepath.Join(s.basePath, string(sub), filepath.FromSlash(key))
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: ensure directory: %w", domain.ErrStorage, err)
	}
	staging := filepath.Join(s.basePath, stagingDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("%w: ensure staging directory: %w", domain.ErrStorage, err)
	}
	tmp, err := os.CreateTemp(staging, "upload-*")
	if err != nil {
		return fmt.Errorf("%w: create file: %w", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write file: %w", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close file: %w", domain.ErrStorage, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: chmod file: %w", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: rename file: %w", domain.ErrStorage, err)
	}
	return nil
}

// StoreAndEncode stores data and returns the base64 encoding of what was
// persisted, read back from disk.
func (s *FileStore) StoreAndEncode(ctx context.Context, sub domain.Subdirectory, filename string, data []byte) (string, error) {
	if err := s.Store(ctx, sub, filename, data); err != nil {
		return "", err
	}
	key, _ := sanitizeKey(filename)
	stored, err := os.ReadFile(filepath.Join(s.basePath, string(sub), filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("%w: read back: %w", domain.ErrStorage, err)
	}
	return EncodeBase64(stored), nil
}

// DecodeAndStore decodes a standard base64 payload and stores the bytes.
func (s *FileStore) DecodeAndStore(ctx context.Context, encoded string, sub domain.Subdirectory, filename string) error {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return fmt.Errorf("%w: %w: %w", domain.ErrStorage, domain.ErrInvalidEncoding, err)
	}
	return s.Store(ctx, sub, filename, data)
}

// EncodeBase64 returns the standard base64 encoding of data without touching disk.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// List returns the files stored under sub, relative to it and slash
// separated, in lexical walk order. A bucket that was never written to is
// reported as empty.
func (s *FileStore) List(sub domain.Subdirectory) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: no store configured", domain.ErrStorage)
	}
	root := filepath.Join(s.basePath, string(sub))
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	files := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		depth := strings.Count(filepath.ToSlash(rel), "/") + 1
		if d.IsDir() {
			if depth >= listDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read stored files: %w", domain.ErrStorage, err)
	}
	return files, nil
}

// Open resolves root/sub/filename for serving. Names that would escape the
// subdirectory, and files that are missing or unreadable, are reported as
// domain.ErrNotFound.
func (s *FileStore) Open(sub domain.Subdirectory, filename string) (*os.File, os.FileInfo, error) {
	if s == nil {
		return nil, nil, fmt.Errorf("%w: no store configured", domain.ErrStorage)
	}
	fullPath, err := s.resolve(sub, filename)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: could not read file %q: %w", domain.ErrNotFound, filename, err)
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: could not read file %q", domain.ErrNotFound, filename)
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: could not read file %q", domain.ErrNotFound, filename)
	}
	return f, info, nil
}

// ReadAll loads every file List reports for sub.
func (s *FileStore) ReadAll(ctx context.Context, sub domain.Subdirectory) ([]zip.Asset, error) {
	names, err := s.List(sub)
	if err != nil {
		return nil, err
	}
	assets := make([]zip.Asset, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.basePath, string(sub), filepath.FromSlash(name))
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrStorage, name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStorage, name, err)
		}
		assets = append(assets, zip.Asset{Filename: name, Data: data, Modified: info.ModTime()})
	}
	return assets, nil
}

// resolve joins a sanitized key under the subdirectory and verifies the
// result is still inside it.
func (s *FileStore) resolve(sub domain.Subdirectory, filename string) (string, error) {
	key, err := sanitizeKey(filename)
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(filepath.Join(s.basePath, string(sub)))
	if err != nil {
		return "", err
	}
	full := filepath.Join(base, filepath.FromSlash(key))
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.ErrInvalidPath
	}
	return full, nil
}

// sanitizeKey normalizes separators and rejects anything that could escape
// its subdirectory. The name is otherwise kept as given.
func sanitizeKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: filename is required", domain.ErrInvalidPath)
	}
	key = strings.ReplaceAll(key, "\\", "/")
	if strings.HasPrefix(key, "/") || filepath.IsAbs(key) {
		return "", fmt.Errorf("%w: absolute filename %q", domain.ErrInvalidPath, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: filename %q leaves its directory", domain.ErrInvalidPath, key)
		}
	}
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: filename %q", domain.ErrInvalidPath, key)
	}
	return cleaned, nil
}
