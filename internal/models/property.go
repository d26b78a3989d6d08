package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyType enumerates the supported listing categories.
type PropertyType string

const (
	TypeApartment PropertyType = "apartment"
	TypeHouse     PropertyType = "house"
	TypeCondo     PropertyType = "condo"
	TypeTownhouse PropertyType = "townhouse"
	TypeOther     PropertyType = "other"
)

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeCondo, TypeTownhouse, TypeOther:
		return true
	}
	return false
}

// PropertyStatus enumerates the canonical listing lifecycle states.
type PropertyStatus string

const (
	StatusAvailable   PropertyStatus = "available"
	StatusPending     PropertyStatus = "pending"
	StatusRented      PropertyStatus = "rented"
	StatusSold        PropertyStatus = "sold"
	StatusMaintenance PropertyStatus = "maintenance"
)

// Valid reports whether s is one of the known statuses.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusRented, StatusSold, StatusMaintenance:
		return true
	}
	return false
}

// statusTransitions is the legal status state machine. Sold is terminal.
var statusTransitions = map[PropertyStatus][]PropertyStatus{
	StatusAvailable:   {StatusPending, StatusRented, StatusSold, StatusMaintenance},
	StatusPending:     {StatusAvailable, StatusRented, StatusSold},
	StatusRented:      {StatusAvailable, StatusMaintenance},
	StatusMaintenance: {StatusAvailable, StatusRented},
	StatusSold:        {},
}

// CanTransition reports whether a listing may move from s to next.
// Writing the current status again is always allowed.
func (s PropertyStatus) CanTransition(next PropertyStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Property represents a rental listing.
type Property struct {
	ID          string         `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null;index" json:"price"`
	Beds        int            `gorm:"not null;default:0" json:"beds"`
	Baths       int            `gorm:"not null;default:0" json:"baths"`
	Sqft        int            `gorm:"not null;default:0" json:"sqft"`
	Location    string         `gorm:"size:255" json:"location"`
	Address     string         `gorm:"size:255" json:"address"`
	City        string         `gorm:"size:255;index" json:"city"`
	State       string         `gorm:"size:255" json:"state"`
	ZipCode     string         `gorm:"size:32" json:"zip_code"`
	Country     string         `gorm:"size:255" json:"country"`
	Type        PropertyType   `gorm:"size:32;not null;default:other" json:"type"`
	Status      PropertyStatus `gorm:"size:32;not null;default:available;index" json:"status"`
	Featured    bool           `gorm:"not null;default:false" json:"featured"`
	Images      StringList     `gorm:"type:json" json:"images"`
	Amenities   StringList     `gorm:"type:json" json:"amenities"`
	UserID      string         `gorm:"type:char(36);not null;index" json:"user_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// IsFavorite is set per-request for the authenticated viewer, never stored.
	IsFavorite bool `gorm:"-" json:"is_favorite,omitempty"`
}

// TableName overrides the table name for Property
func (Property) TableName() string {
	return "properties"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AuthUser is the identity extracted from a validated session. The identity
// provider owns the record; this service treats it as read-only.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
