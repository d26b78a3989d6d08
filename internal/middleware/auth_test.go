package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/renthaven/renthaven/internal/config"
	"github.com/renthaven/renthaven/internal/middleware"
)

func guardConfig() *config.Config {
	// Port 1 is never listening, so session validation fails fast
	return &config.Config{
		AuthzURL:      "http://127.0.0.1:1",
		AuthzClientID: "test-client",
	}
}

// TestRequireUserNoCookie tests the 401 contract without a session cookie
func TestRequireUserNoCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/api/properties/mine", middleware.RequireUser(guardConfig()), func(c *fiber.Ctx) error {
		return c.SendString("reached")
	})

	req := httptest.NewRequest("GET", "/api/properties/mine", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	if resp.StatusCode != 401 {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["error"] != "Unauthorized" {
		t.Errorf("Expected Unauthorized body, got %v", body)
	}
}

// TestRequireUserInvalidSession tests that an unverifiable cookie is 401
func TestRequireUserInvalidSession(t *testing.T) {
	app := fiber.New()
	app.Get("/api/properties/mine", middleware.RequireUser(guardConfig()), func(c *fiber.Ctx) error {
		return c.SendString("reached")
	})

	req := httptest.NewRequest("GET", "/api/properties/mine", nil)
	req.Header.Set("Cookie", "cookie_session=stale-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	if resp.StatusCode != 401 {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

// TestRouteGuardRedirect tests the protected-page redirect with the origin
// path carried along
func TestRouteGuardRedirect(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RouteGuard(guardConfig()))
	app.Get("/dashboard/settings", func(c *fiber.Ctx) error {
		return c.SendString("page")
	})

	req := httptest.NewRequest("GET", "/dashboard/settings", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	if resp.StatusCode != 302 {
		t.Errorf("Expected status 302, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if location != "/login?redirectedFrom=%2Fdashboard%2Fsettings" {
		t.Errorf("Expected redirect carrying origin path, got %s", location)
	}
}

// TestRouteGuardPublicPage tests that public pages pass through
func TestRouteGuardPublicPage(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RouteGuard(guardConfig()))
	app.Get("/properties", func(c *fiber.Ctx) error {
		return c.SendString("page")
	})

	req := httptest.NewRequest("GET", "/properties", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

// TestRouteGuardRootMutation tests that non-GET root requests are guarded
func TestRouteGuardRootMutation(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RouteGuard(guardConfig()))
	app.Post("/", func(c *fiber.Ctx) error {
		return c.SendString("mutated")
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("home")
	})

	req := httptest.NewRequest("POST", "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("Expected status 302 for anonymous root mutation, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 for anonymous root read, got %d", resp.StatusCode)
	}
}
