package services_test

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/renthaven/renthaven/internal/config"
	"github.com/renthaven/renthaven/internal/services"
)

func storageConfig(t *testing.T) *config.Config {
	return &config.Config{
		StorageRoot:   t.TempDir(),
		PublicBaseURL: "http://localhost:3000",
	}
}

// makeFileHeaders builds multipart file headers the way an upload request
// carries them
func makeFileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("Failed to parse multipart form: %v", err)
	}
	return req.MultipartForm.File["files"]
}

// TestSaveFiles tests namespace placement and URL derivation
func TestSaveFiles(t *testing.T) {
	cfg := storageConfig(t)

	stored, err := services.SaveFiles(cfg, "user-1", makeFileHeaders(t, "photo.jpg", "floorplan.png"))
	if err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}

	if len(stored) != 2 {
		t.Fatalf("Expected 2 stored files, got %d", len(stored))
	}
	for _, f := range stored {
		if !strings.HasPrefix(f.Path, "users/user-1/") {
			t.Errorf("Expected object under users/user-1/, got %s", f.Path)
		}
		if f.URL != "http://localhost:3000/files/"+f.Path {
			t.Errorf("Unexpected public URL %s", f.URL)
		}
		if _, err := os.Stat(filepath.Join(cfg.StorageRoot, filepath.FromSlash(f.Path))); err != nil {
			t.Errorf("Expected object on disk: %v", err)
		}
	}

	// Extensions survive, original names do not
	if !strings.HasSuffix(stored[0].Path, ".jpg") || strings.Contains(stored[0].Path, "photo") {
		t.Errorf("Expected randomized name keeping extension, got %s", stored[0].Path)
	}
}

// TestDeleteFileNamespace tests that deletes are confined to the caller's
// namespace
func TestDeleteFileNamespace(t *testing.T) {
	cfg := storageConfig(t)

	stored, err := services.SaveFiles(cfg, "user-1", makeFileHeaders(t, "photo.jpg"))
	if err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}

	// Another user cannot reach into the namespace
	if err := services.DeleteFile(cfg, "user-2", stored[0].Path); err != services.ErrNotOwner {
		t.Errorf("Expected ErrNotOwner for foreign namespace, got %v", err)
	}
	// Path traversal out of the namespace is rejected
	if err := services.DeleteFile(cfg, "user-1", "users/user-1/../user-2/x.jpg"); err != services.ErrNotOwner {
		t.Errorf("Expected ErrNotOwner for traversal, got %v", err)
	}

	// The owner can delete, and a second delete still succeeds
	if err := services.DeleteFile(cfg, "user-1", stored[0].Path); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.StorageRoot, filepath.FromSlash(stored[0].Path))); !os.IsNotExist(err) {
		t.Error("Expected object removed from disk")
	}
	if err := services.DeleteFile(cfg, "user-1", stored[0].Path); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
}
