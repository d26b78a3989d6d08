package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/renthaven/renthaven/internal/config"
	"github.com/renthaven/renthaven/internal/handlers"
)

func uploadApp(t *testing.T) (*fiber.App, *config.Config) {
	cfg := &config.Config{
		StorageRoot:   t.TempDir(),
		PublicBaseURL: "http://localhost:3000",
	}
	handler := &handlers.UploadHandler{Cfg: cfg}

	app := fiber.New()
	app.Post("/api/upload", asUser("user-1"), handler.Create)
	app.Delete("/api/upload", asUser("user-1"), handler.Delete)
	return app, cfg
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte("data")); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

// TestUpload tests POST /api/upload
func TestUpload(t *testing.T) {
	app, _ := uploadApp(t)

	body, contentType := multipartBody(t, "a.jpg", "b.png")
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var result struct {
		Success bool `json:"success"`
		Files   []struct {
			Path string `json:"path"`
			URL  string `json:"url"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !result.Success || len(result.Files) != 2 {
		t.Errorf("Expected 2 stored files, got %+v", result)
	}
}

// TestUploadNoFiles tests the empty-upload contract
func TestUploadNoFiles(t *testing.T) {
	app, _ := uploadApp(t)

	body, contentType := multipartBody(t)
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["error"] != "No files provided" {
		t.Errorf("Expected no-files error body, got %v", result)
	}
}

// TestUploadDelete tests DELETE /api/upload
func TestUploadDelete(t *testing.T) {
	app, _ := uploadApp(t)

	// Store a file first
	body, contentType := multipartBody(t, "a.jpg")
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var uploaded struct {
		Files []struct {
			Path string `json:"path"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("Failed to decode upload response: %v", err)
	}

	// Missing path
	status, result := doJSON(t, app, "DELETE", "/api/upload", map[string]string{})
	if status != 400 || result["error"] != "No file path provided" {
		t.Errorf("Expected missing-path error, got %d %v", status, result)
	}

	// Foreign namespace
	status, _ = doJSON(t, app, "DELETE", "/api/upload", map[string]string{"path": "users/user-2/x.jpg"})
	if status != 403 {
		t.Errorf("Expected status 403 for foreign namespace, got %d", status)
	}

	// Own file
	status, result = doJSON(t, app, "DELETE", "/api/upload", map[string]string{"path": uploaded.Files[0].Path})
	if status != 200 || result["success"] != true {
		t.Errorf("Expected success delete, got %d %v", status, result)
	}
	if result["message"] != "File deleted successfully" {
		t.Errorf("Expected delete message, got %v", result)
	}
}
