package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/renthaven/renthaven/internal/models"
	"github.com/renthaven/renthaven/internal/services"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Property{},
		&models.Favorite{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createProperty(t *testing.T, db *gorm.DB, p models.Property) models.Property {
	if p.Title == "" {
		p.Title = "Test listing"
	}
	if p.UserID == "" {
		p.UserID = "owner-1"
	}
	if p.Status == "" {
		p.Status = models.StatusAvailable
	}
	if p.Type == "" {
		p.Type = models.TypeApartment
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to create test property: %v", err)
	}
	return p
}

// TestListPropertiesDefaults tests that listing defaults to available
// listings only, newest first, capped at the default page size
func TestListPropertiesDefaults(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 12; i++ {
		p := models.Property{
			Title:     fmt.Sprintf("Listing %d", i),
			Price:     int64(1000 + i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		createProperty(t, db, p)
	}
	// A rented listing must not show up in the default browse view
	createProperty(t, db, models.Property{Title: "Rented", Status: models.StatusRented, Price: 500})

	properties, err := services.ListProperties(db, services.PropertyFilter{})
	if err != nil {
		t.Fatalf("ListProperties failed: %v", err)
	}

	if len(properties) != 10 {
		t.Errorf("Expected default page of 10, got %d", len(properties))
	}
	for _, p := range properties {
		if p.Status != models.StatusAvailable {
			t.Errorf("Expected only available listings, got %s", p.Status)
		}
	}
	// Newest first
	if properties[0].Title != "Listing 11" {
		t.Errorf("Expected newest listing first, got %s", properties[0].Title)
	}
}

// TestListPropertiesFilters tests conjunctive filter composition
func TestListPropertiesFilters(t *testing.T) {
	db := setupTestDB(t)

	createProperty(t, db, models.Property{Title: "A", Price: 1000, Beds: 2, Baths: 1, Sqft: 700, City: "Portland", Type: models.TypeApartment})
	createProperty(t, db, models.Property{Title: "B", Price: 2500, Beds: 3, Baths: 2, Sqft: 1400, City: "Portland", Type: models.TypeHouse})
	createProperty(t, db, models.Property{Title: "C", Price: 1800, Beds: 3, Baths: 2, Sqft: 1200, City: "Austin", Type: models.TypeHouse})

	properties, err := services.ListProperties(db, services.PropertyFilter{
		MinPrice: 1500,
		Beds:     3,
		Location: "port",
		Types:    []string{"house"},
	})
	if err != nil {
		t.Fatalf("ListProperties failed: %v", err)
	}

	if len(properties) != 1 || properties[0].Title != "B" {
		t.Errorf("Expected only listing B, got %d results", len(properties))
	}
}

// TestListPropertiesSort tests the sort keys
func TestListPropertiesSort(t *testing.T) {
	db := setupTestDB(t)

	createProperty(t, db, models.Property{Title: "Cheap", Price: 900})
	createProperty(t, db, models.Property{Title: "Mid", Price: 1500})
	createProperty(t, db, models.Property{Title: "Expensive", Price: 3000})

	asc, err := services.ListProperties(db, services.PropertyFilter{SortBy: services.SortPriceAsc})
	if err != nil {
		t.Fatalf("ListProperties failed: %v", err)
	}
	if asc[0].Title != "Cheap" || asc[2].Title != "Expensive" {
		t.Error("Expected ascending price order")
	}

	desc, err := services.ListProperties(db, services.PropertyFilter{SortBy: services.SortPriceDesc})
	if err != nil {
		t.Fatalf("ListProperties failed: %v", err)
	}
	if desc[0].Title != "Expensive" {
		t.Error("Expected descending price order")
	}
}

// TestListPropertiesPagination tests that consecutive pages partition the
// result set without overlap
func TestListPropertiesPagination(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 7; i++ {
		createProperty(t, db, models.Property{Title: fmt.Sprintf("P%d", i), Price: int64(100 * (i + 1))})
	}

	seen := make(map[string]bool)
	total := 0
	for page := 1; page <= 3; page++ {
		properties, err := services.ListProperties(db, services.PropertyFilter{
			SortBy: services.SortPriceAsc,
			Page:   page,
			Limit:  3,
		})
		if err != nil {
			t.Fatalf("ListProperties page %d failed: %v", page, err)
		}
		for _, p := range properties {
			if seen[p.ID] {
				t.Errorf("Listing %s returned on more than one page", p.Title)
			}
			seen[p.ID] = true
		}
		total += len(properties)
	}

	if total != 7 {
		t.Errorf("Expected pages to cover all 7 listings, got %d", total)
	}
}

// TestListPropertiesPaginationTies tests that rows sharing a sort key still
// paginate exactly once. Bulk inserts land inside one clock tick, so every
// sort needs a deterministic tiebreaker for the offset window to be stable.
func TestListPropertiesPaginationTies(t *testing.T) {
	db := setupTestDB(t)

	stamp := time.Now().Truncate(time.Second)
	for i := 0; i < 25; i++ {
		createProperty(t, db, models.Property{
			Title:     fmt.Sprintf("Tied %d", i),
			Price:     1500,
			CreatedAt: stamp,
		})
	}

	for _, sortBy := range []string{services.SortNewest, services.SortPriceAsc} {
		seen := make(map[string]bool)
		for page := 1; page <= 3; page++ {
			properties, err := services.ListProperties(db, services.PropertyFilter{
				SortBy: sortBy,
				Page:   page,
				Limit:  10,
			})
			if err != nil {
				t.Fatalf("ListProperties %s page %d failed: %v", sortBy, page, err)
			}
			for _, p := range properties {
				if seen[p.ID] {
					t.Errorf("Sort %s: listing %s returned on more than one page", sortBy, p.Title)
				}
				seen[p.ID] = true
			}
		}
		if len(seen) != 25 {
			t.Errorf("Sort %s: expected pages to cover all 25 listings, got %d", sortBy, len(seen))
		}
	}
}

// TestGetPropertyNotFound tests the sentinel for an unknown id
func TestGetPropertyNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.GetProperty(db, "missing-id")
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestListOwnerProperties tests that owners see all lifecycle states
func TestListOwnerProperties(t *testing.T) {
	db := setupTestDB(t)

	createProperty(t, db, models.Property{Title: "Mine available", UserID: "owner-1"})
	createProperty(t, db, models.Property{Title: "Mine rented", UserID: "owner-1", Status: models.StatusRented})
	createProperty(t, db, models.Property{Title: "Theirs", UserID: "owner-2"})

	properties, err := services.ListOwnerProperties(db, "owner-1")
	if err != nil {
		t.Fatalf("ListOwnerProperties failed: %v", err)
	}

	if len(properties) != 2 {
		t.Errorf("Expected 2 owned listings, got %d", len(properties))
	}
}

// TestCreatePropertyDefaults tests that type and status default sensibly
func TestCreatePropertyDefaults(t *testing.T) {
	db := setupTestDB(t)

	property := models.Property{Title: "Bare", Price: 100, UserID: "owner-1"}
	if err := services.CreateProperty(db, &property); err != nil {
		t.Fatalf("CreateProperty failed: %v", err)
	}

	if property.ID == "" {
		t.Error("Expected a generated id")
	}
	if property.Type != models.TypeOther {
		t.Errorf("Expected type to default to other, got %s", property.Type)
	}
	if property.Status != models.StatusAvailable {
		t.Errorf("Expected status to default to available, got %s", property.Status)
	}
}

// TestUpdatePropertyOwnership tests the owner check
func TestUpdatePropertyOwnership(t *testing.T) {
	db := setupTestDB(t)

	p := createProperty(t, db, models.Property{UserID: "owner-1", Price: 1000})

	_, err := services.UpdateProperty(db, "intruder", p.ID, map[string]interface{}{"price": int64(1)})
	if !errors.Is(err, services.ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}

	// The listing must be untouched
	got, err := services.GetProperty(db, p.ID)
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	if got.Price != 1000 {
		t.Errorf("Expected price unchanged, got %d", got.Price)
	}
}

// TestUpdatePropertyStatusTransition tests the lifecycle state machine
func TestUpdatePropertyStatusTransition(t *testing.T) {
	db := setupTestDB(t)

	p := createProperty(t, db, models.Property{UserID: "owner-1", Status: models.StatusSold})

	// Sold is terminal
	_, err := services.UpdateProperty(db, "owner-1", p.ID, map[string]interface{}{"status": "available"})
	if !errors.Is(err, services.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition from sold, got %v", err)
	}

	// Re-writing the current status is allowed
	updated, err := services.UpdateProperty(db, "owner-1", p.ID, map[string]interface{}{"status": "sold"})
	if err != nil {
		t.Fatalf("Expected same-status write to succeed, got %v", err)
	}
	if updated.Status != models.StatusSold {
		t.Errorf("Expected status sold, got %s", updated.Status)
	}

	// Unknown status strings are rejected
	_, err = services.UpdateProperty(db, "owner-1", p.ID, map[string]interface{}{"status": "demolished"})
	if !errors.Is(err, services.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for unknown status, got %v", err)
	}
}

// TestUpdatePropertyReturnsServerState tests that the acknowledged state is
// re-read after the write
func TestUpdatePropertyReturnsServerState(t *testing.T) {
	db := setupTestDB(t)

	p := createProperty(t, db, models.Property{UserID: "owner-1", Price: 1000, Title: "Before"})

	updated, err := services.UpdateProperty(db, "owner-1", p.ID, map[string]interface{}{
		"title": "After",
		"price": int64(2000),
	})
	if err != nil {
		t.Fatalf("UpdateProperty failed: %v", err)
	}
	if updated.Title != "After" || updated.Price != 2000 {
		t.Errorf("Expected acknowledged state, got title=%s price=%d", updated.Title, updated.Price)
	}
}

// TestDeletePropertyCascadesFavorites tests that favorite rows go with the
// listing
func TestDeletePropertyCascadesFavorites(t *testing.T) {
	db := setupTestDB(t)

	p := createProperty(t, db, models.Property{UserID: "owner-1"})
	if _, err := services.AddFavorite(db, "viewer-1", p.ID); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}

	if err := services.DeleteProperty(db, "owner-1", p.ID); err != nil {
		t.Fatalf("DeleteProperty failed: %v", err)
	}

	var count int64
	db.Model(&models.Favorite{}).Where("property_id = ?", p.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected favorite rows removed, found %d", count)
	}

	_, err := services.GetProperty(db, p.ID)
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected listing gone, got %v", err)
	}
}

// TestDeletePropertyOwnership tests that only the owner can delete
func TestDeletePropertyOwnership(t *testing.T) {
	db := setupTestDB(t)

	p := createProperty(t, db, models.Property{UserID: "owner-1"})

	if err := services.DeleteProperty(db, "intruder", p.ID); !errors.Is(err, services.ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}
	if err := services.DeleteProperty(db, "owner-1", "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
