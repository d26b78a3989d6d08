package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/renthaven/renthaven/internal/config"
)

// StoredFile is a saved object reference plus its derived public URL.
type StoredFile struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// PublicFileURL derives the URL a stored object is served at.
func PublicFileURL(cfg *config.Config, storedPath string) string {
	return strings.TrimRight(cfg.PublicBaseURL, "/") + "/files/" + storedPath
}

// SaveFiles writes the uploaded files into the user's namespace under the
// bucket root. Object names are random; the original filename only
// contributes its extension.
func SaveFiles(cfg *config.Config, userID string, files []*multipart.FileHeader) ([]StoredFile, error) {
	namespace := path.Join("users", userID)
	dir := filepath.Join(cfg.StorageRoot, filepath.FromSlash(namespace))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage namespace: %w", err)
	}

	stored := make([]StoredFile, 0, len(files))
	for _, fh := range files {
		ext := path.Ext(fh.Filename)
		name := uuid.NewString() + ext
		objectPath := path.Join(namespace, name)

		src, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}

		dst, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to create object %s: %w", objectPath, err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write object %s: %w", objectPath, err)
		}

		stored = append(stored, StoredFile{
			Path: objectPath,
			URL:  PublicFileURL(cfg, objectPath),
		})
	}

	return stored, nil
}

// DeleteFile removes a stored object by path. Deletes are confined to the
// caller's users/{id} namespace; removing an absent object succeeds.
// Property.images entries referencing the object are left as-is.
func DeleteFile(cfg *config.Config, userID, objectPath string) error {
	cleaned := path.Clean(strings.TrimPrefix(objectPath, "/"))
	namespace := path.Join("users", userID)
	if cleaned != namespace && !strings.HasPrefix(cleaned, namespace+"/") {
		return ErrNotOwner
	}

	full := filepath.Join(cfg.StorageRoot, filepath.FromSlash(cleaned))
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object %s: %w", cleaned, err)
	}
	return nil
}
