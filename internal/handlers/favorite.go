package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/renthaven/renthaven/internal/services"
	"github.com/renthaven/renthaven/internal/utils"
	"gorm.io/gorm"
)

// FavoriteHandler handles favorite routes
type FavoriteHandler struct {
	DB *gorm.DB
}

type favoriteRequest struct {
	PropertyID string `json:"propertyId"`
}

// List handles GET /api/favorites
// @Summary List favorites
// @Description List the authenticated user's favorited properties
// @Tags Favorites
// @Produce json
// @Success 200 {array} models.Property
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /favorites [get]
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	properties, err := services.ListFavorites(h.DB, user.ID)
	if err != nil {
		log.Printf("Failed to list favorites for user %s: %v", user.ID, err)
		return utils.ErrorResponse(c, "Failed to fetch favorites", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(properties)
}

// Create handles POST /api/favorites
// @Summary Add a favorite
// @Description Bookmark a property for the authenticated user
// @Tags Favorites
// @Accept json
// @Produce json
// @Param body body favoriteRequest true "Property reference"
// @Success 200 {object} models.Property
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /favorites [post]
func (h *FavoriteHandler) Create(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	var body favoriteRequest
	if err := c.BodyParser(&body); err != nil || body.PropertyID == "" {
		return utils.ErrorResponse(c, "Property ID is required", fiber.StatusBadRequest)
	}

	property, err := services.AddFavorite(h.DB, user.ID, body.PropertyID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return utils.NotFoundResponse(c, "Property not found")
		case errors.Is(err, services.ErrAlreadyFavorited):
			return utils.ErrorResponse(c, "Property already in favorites", fiber.StatusBadRequest)
		}
		log.Printf("Failed to add favorite for user %s: %v", user.ID, err)
		return utils.ErrorResponse(c, "Failed to add to favorites", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(property)
}

// Toggle handles POST /api/favorites/toggle
// @Summary Toggle a favorite
// @Description Atomically flip the bookmark and report the resulting state
// @Tags Favorites
// @Accept json
// @Produce json
// @Param body body favoriteRequest true "Property reference"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /favorites/toggle [post]
func (h *FavoriteHandler) Toggle(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	var body favoriteRequest
	if err := c.BodyParser(&body); err != nil || body.PropertyID == "" {
		return utils.ErrorResponse(c, "Property ID is required", fiber.StatusBadRequest)
	}

	favorited, err := services.ToggleFavorite(h.DB, user.ID, body.PropertyID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Property not found")
		}
		log.Printf("Failed to toggle favorite for user %s: %v", user.ID, err)
		return utils.ErrorResponse(c, "Failed to toggle favorite", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"is_favorite": favorited,
	})
}

// Delete handles DELETE /api/favorites?propertyId=...
// @Summary Remove a favorite
// @Description Remove the bookmark; removing an absent bookmark still succeeds
// @Tags Favorites
// @Produce json
// @Param propertyId query string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /favorites [delete]
func (h *FavoriteHandler) Delete(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	propertyID := c.Query("propertyId", "")
	if propertyID == "" {
		return utils.ErrorResponse(c, "Property ID is required", fiber.StatusBadRequest)
	}

	if err := services.RemoveFavorite(h.DB, user.ID, propertyID); err != nil {
		log.Printf("Failed to remove favorite for user %s: %v", user.ID, err)
		return utils.ErrorResponse(c, "Failed to remove from favorites", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c)
}
