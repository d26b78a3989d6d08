package services

import (
	"errors"

	"github.com/renthaven/renthaven/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleFavorite flips the (user, property) bookmark inside one transaction:
// delete the pair if present, insert it otherwise. The conditional runs
// against the row itself, so two racing toggles cannot both insert.
// Returns the resulting membership.
func ToggleFavorite(db *gorm.DB, userID, propertyID string) (bool, error) {
	var favorited bool
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND property_id = ?", userID, propertyID).
			Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			favorited = false
			return nil
		}

		var exists int64
		if err := tx.Model(&models.Property{}).Where("id = ?", propertyID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}

		// A concurrent toggle can insert the pair between the delete above
		// and this insert. The unique index catches that; DO NOTHING turns
		// the collision into "already favorited" instead of an error.
		favorited = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Favorite{UserID: userID, PropertyID: propertyID}).Error
	})
	return favorited, err
}

// AddFavorite bookmarks a property for a user and returns the property
// annotated for the viewer. Duplicate pairs report ErrAlreadyFavorited,
// unknown properties ErrNotFound.
func AddFavorite(db *gorm.DB, userID, propertyID string) (*models.Property, error) {
	var property models.Property
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", propertyID).First(&property).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Favorite{}).
			Where("user_id = ? AND property_id = ?", userID, propertyID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyFavorited
		}

		return tx.Create(&models.Favorite{UserID: userID, PropertyID: propertyID}).Error
	})
	if err != nil {
		return nil, err
	}

	property.IsFavorite = true
	return &property, nil
}

// RemoveFavorite deletes the bookmark. Deleting an absent row is not an
// error; the operation is idempotent.
func RemoveFavorite(db *gorm.DB, userID, propertyID string) error {
	return db.Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.Favorite{}).Error
}

// ListFavorites returns the user's favorited properties, each annotated
// is_favorite for the viewer.
func ListFavorites(db *gorm.DB, userID string) ([]models.Property, error) {
	var properties []models.Property
	err := db.Model(&models.Property{}).
		Joins("JOIN favorites ON favorites.property_id = properties.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, favorites.id DESC").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}

	for i := range properties {
		properties[i].IsFavorite = true
	}
	return properties, nil
}

// IsFavorite reports whether the pair exists.
func IsFavorite(db *gorm.DB, userID, propertyID string) (bool, error) {
	var count int64
	err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error
	return count > 0, err
}
