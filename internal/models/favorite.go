package models

import "time"

// Favorite is a user-to-property bookmark. The (user, property) pair is
// unique; rows are only ever created or deleted, never updated.
type Favorite struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID     string    `gorm:"type:char(36);not null;index:idx_user_property,unique" json:"user_id"`
	PropertyID string    `gorm:"type:char(36);not null;index:idx_user_property,unique" json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}
