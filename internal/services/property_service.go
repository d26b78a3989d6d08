package services

import (
	"errors"
	"strings"

	"github.com/renthaven/renthaven/internal/models"
	"gorm.io/gorm"
)

// Sort keys accepted by ListProperties.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortOldest    = "oldest"
)

const defaultPageSize = 10

// PropertyFilter holds the optional listing filters. All predicates compose
// conjunctively; zero values mean "no constraint".
type PropertyFilter struct {
	MinPrice int64
	MaxPrice int64
	Beds     int
	Baths    int
	MinSqft  int
	MaxSqft  int
	Types    []string
	Location string
	Status   string
	SortBy   string
	Page     int
	Limit    int
}

// ListProperties returns one page of listings matching the filter.
// Unless the filter says otherwise only available listings are returned,
// matching the public browse surface.
func ListProperties(db *gorm.DB, filter PropertyFilter) ([]models.Property, error) {
	query := db.Model(&models.Property{})

	status := filter.Status
	if status == "" {
		status = string(models.StatusAvailable)
	}
	query = query.Where("status = ?", status)

	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if filter.Beds > 0 {
		query = query.Where("beds >= ?", filter.Beds)
	}
	if filter.Baths > 0 {
		query = query.Where("baths >= ?", filter.Baths)
	}
	if filter.MinSqft > 0 {
		query = query.Where("sqft >= ?", filter.MinSqft)
	}
	if filter.MaxSqft > 0 {
		query = query.Where("sqft <= ?", filter.MaxSqft)
	}
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if filter.Location != "" {
		// Case-insensitive match portable across drivers (no ILIKE on mysql/sqlite)
		query = query.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}

	// Every sort carries id as a tiebreaker: rows sharing a price or a
	// timestamp would otherwise have no stable order across the independent
	// queries that back offset pagination, letting pages overlap or drop rows.
	switch filter.SortBy {
	case SortPriceAsc:
		query = query.Order("price ASC, id")
	case SortPriceDesc:
		query = query.Order("price DESC, id")
	case SortOldest:
		query = query.Order("created_at ASC, id")
	default: // SortNewest
		query = query.Order("created_at DESC, id")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	query = query.Offset((page - 1) * limit).Limit(limit)

	var properties []models.Property
	if err := query.Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// GetProperty fetches one listing by id. Returns ErrNotFound on a no-row
// condition so callers can distinguish it from a transport error.
func GetProperty(db *gorm.DB, id string) (*models.Property, error) {
	var property models.Property
	if err := db.Where("id = ?", id).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

// ListOwnerProperties returns every listing owned by userID, newest first.
// The owner sees all lifecycle states, not just available.
func ListOwnerProperties(db *gorm.DB, userID string) ([]models.Property, error) {
	var properties []models.Property
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC, id").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

// CreateProperty inserts a new listing. The owner reference must already be
// stamped from the authenticated session by the caller.
func CreateProperty(db *gorm.DB, property *models.Property) error {
	if property.Type == "" {
		property.Type = models.TypeOther
	}
	if property.Status == "" {
		property.Status = models.StatusAvailable
	}
	return db.Create(property).Error
}

// UpdateProperty applies a partial update to a listing owned by userID.
// Status changes are checked against the transition table.
func UpdateProperty(db *gorm.DB, userID, id string, updates map[string]interface{}) (*models.Property, error) {
	var property models.Property
	if err := db.Where("id = ?", id).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if property.UserID != userID {
		return nil, ErrNotOwner
	}

	if raw, ok := updates["status"]; ok {
		next := models.PropertyStatus(toString(raw))
		if !next.Valid() || !property.Status.CanTransition(next) {
			return nil, ErrInvalidTransition
		}
	}

	if err := db.Model(&property).Updates(updates).Error; err != nil {
		return nil, err
	}

	// Re-read so the caller gets the acknowledged server state
	if err := db.Where("id = ?", id).First(&property).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

// DeleteProperty removes a listing owned by userID along with its favorite
// rows. Stored images are left in place (soft orphaning, removed separately
// through the upload API).
func DeleteProperty(db *gorm.DB, userID, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.Where("id = ?", id).First(&property).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if property.UserID != userID {
			return ErrNotOwner
		}

		if err := tx.Where("property_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}

		return tx.Delete(&property).Error
	})
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case models.PropertyStatus:
		return string(s)
	}
	return ""
}
