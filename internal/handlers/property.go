package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/renthaven/renthaven/internal/cache"
	"github.com/renthaven/renthaven/internal/models"
	"github.com/renthaven/renthaven/internal/services"
	"github.com/renthaven/renthaven/internal/types"
	"github.com/renthaven/renthaven/internal/utils"
	"gorm.io/gorm"
)

const listCachePrefix = "properties"

var validate = validator.New()

// PropertyHandler handles property listing routes
type PropertyHandler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

// CreatePropertyRequest is the payload for creating a listing.
type CreatePropertyRequest struct {
	Title       string                  `json:"title" validate:"required,max=255"`
	Description string                  `json:"description"`
	Price       types.FlexUint64        `json:"price" validate:"required"`
	Beds        int                     `json:"beds" validate:"gte=0"`
	Baths       int                     `json:"baths" validate:"gte=0"`
	Sqft        int                     `json:"sqft" validate:"gte=0"`
	Location    string                  `json:"location"`
	Address     string                  `json:"address"`
	City        string                  `json:"city"`
	State       string                  `json:"state"`
	ZipCode     string                  `json:"zip_code"`
	Country     string                  `json:"country"`
	Type        string                  `json:"type" validate:"omitempty,oneof=apartment house condo townhouse other"`
	Status      string                  `json:"status" validate:"omitempty,oneof=available pending rented sold maintenance"`
	Featured    bool                    `json:"featured"`
	Images      types.FlexList[string]  `json:"images"`
	Amenities   types.FlexList[string]  `json:"amenities"`
}

// UpdatePropertyRequest is the partial-update payload; nil fields are untouched.
type UpdatePropertyRequest struct {
	Title       *string                 `json:"title" validate:"omitempty,max=255"`
	Description *string                 `json:"description"`
	Price       *types.FlexUint64       `json:"price"`
	Beds        *int                    `json:"beds" validate:"omitempty,gte=0"`
	Baths       *int                    `json:"baths" validate:"omitempty,gte=0"`
	Sqft        *int                    `json:"sqft" validate:"omitempty,gte=0"`
	Location    *string                 `json:"location"`
	Address     *string                 `json:"address"`
	City        *string                 `json:"city"`
	State       *string                 `json:"state"`
	ZipCode     *string                 `json:"zip_code"`
	Country     *string                 `json:"country"`
	Type        *string                 `json:"type" validate:"omitempty,oneof=apartment house condo townhouse other"`
	Status      *string                 `json:"status" validate:"omitempty,oneof=available pending rented sold maintenance"`
	Featured    *bool                   `json:"featured"`
	Images      *types.FlexList[string] `json:"images"`
	Amenities   *types.FlexList[string] `json:"amenities"`
}

// List handles GET /api/properties
// @Summary List properties
// @Description List available properties with optional filters, sorting and pagination
// @Tags Properties
// @Produce json
// @Param minPrice query int false "Minimum price"
// @Param maxPrice query int false "Maximum price"
// @Param beds query int false "Minimum bedroom count"
// @Param baths query int false "Minimum bathroom count"
// @Param minSqft query int false "Minimum area"
// @Param maxSqft query int false "Maximum area"
// @Param type query string false "Comma-separated property types"
// @Param location query string false "Free-text city match"
// @Param sortBy query string false "price_asc | price_desc | newest | oldest"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {array} models.Property
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /properties [get]
func (h *PropertyHandler) List(c *fiber.Ctx) error {
	filter := services.PropertyFilter{
		MinPrice: int64(c.QueryInt("minPrice", 0)),
		MaxPrice: int64(c.QueryInt("maxPrice", 0)),
		Beds:     c.QueryInt("beds", 0),
		Baths:    c.QueryInt("baths", 0),
		MinSqft:  c.QueryInt("minSqft", 0),
		MaxSqft:  c.QueryInt("maxSqft", 0),
		Types:    parseMultiQuery(c, "type"),
		Location: c.Query("location", ""),
		SortBy:   c.Query("sortBy", ""),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 0),
	}

	key := cache.Key(listCachePrefix, map[string]string{
		"q": string(c.Request().URI().QueryString()),
	})
	var cached []models.Property
	if hit, err := h.Cache.Get(c.Context(), key, &cached); err == nil && hit {
		return c.Status(fiber.StatusOK).JSON(cached)
	}

	properties, err := services.ListProperties(h.DB, filter)
	if err != nil {
		log.Printf("Failed to list properties: %v", err)
		return utils.ErrorResponse(c, "Failed to fetch properties", fiber.StatusInternalServerError)
	}

	if err := h.Cache.Set(c.Context(), key, properties); err != nil {
		log.Printf("Failed to cache property list: %v", err)
	}

	return c.Status(fiber.StatusOK).JSON(properties)
}

// Mine handles GET /api/properties/mine
// @Summary List own properties
// @Description List every listing owned by the authenticated user, any status
// @Tags Properties
// @Produce json
// @Success 200 {array} models.Property
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /properties/mine [get]
func (h *PropertyHandler) Mine(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	properties, err := services.ListOwnerProperties(h.DB, user.ID)
	if err != nil {
		log.Printf("Failed to list properties for user %s: %v", user.ID, err)
		return utils.ErrorResponse(c, "Failed to fetch properties", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(properties)
}

// Get handles GET /api/properties/:id
// @Summary Get one property
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} models.Property
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /properties/{id} [get]
func (h *PropertyHandler) Get(c *fiber.Ctx) error {
	property, err := services.GetProperty(h.DB, c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Property not found")
		}
		log.Printf("Failed to fetch property %s: %v", c.Params("id"), err)
		return utils.ErrorResponse(c, "Failed to fetch property", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(property)
}

// Create handles POST /api/properties
// @Summary Create a property
// @Tags Properties
// @Accept json
// @Produce json
// @Param body body CreatePropertyRequest true "New listing"
// @Success 201 {object} models.Property
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /properties [post]
func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	var body CreatePropertyRequest
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest)
	}
	if err := validate.Struct(&body); err != nil {
		return utils.ErrorResponse(c, validationMessage(err), fiber.StatusBadRequest)
	}

	property := models.Property{
		Title:       body.Title,
		Description: body.Description,
		Price:       int64(body.Price.Uint64()),
		Beds:        body.Beds,
		Baths:       body.Baths,
		Sqft:        body.Sqft,
		Location:    body.Location,
		Address:     body.Address,
		City:        body.City,
		State:       body.State,
		ZipCode:     body.ZipCode,
		Country:     body.Country,
		Type:        models.PropertyType(body.Type),
		Status:      models.PropertyStatus(body.Status),
		Featured:    body.Featured,
		Images:      models.StringList(body.Images.Slice()),
		Amenities:   models.StringList(body.Amenities.Slice()),
		UserID:      user.ID,
	}

	if err := services.CreateProperty(h.DB, &property); err != nil {
		log.Printf("Failed to create property: %v", err)
		return utils.ErrorResponse(c, "Failed to create property", fiber.StatusInternalServerError)
	}

	h.invalidateListCache(c)

	return c.Status(fiber.StatusCreated).JSON(property)
}

// Update handles PUT /api/properties/:id
// @Summary Update a property
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Param body body UpdatePropertyRequest true "Fields to update"
// @Success 200 {object} models.Property
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /properties/{id} [put]
func (h *PropertyHandler) Update(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	var body UpdatePropertyRequest
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest)
	}
	if err := validate.Struct(&body); err != nil {
		return utils.ErrorResponse(c, validationMessage(err), fiber.StatusBadRequest)
	}

	updates := body.toUpdates()
	if len(updates) == 0 {
		return utils.ErrorResponse(c, "Nothing to update", fiber.StatusBadRequest)
	}

	property, err := services.UpdateProperty(h.DB, user.ID, c.Params("id"), updates)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return utils.NotFoundResponse(c, "Property not found")
		case errors.Is(err, services.ErrNotOwner):
			return utils.ErrorResponse(c, "You do not own this property", fiber.StatusForbidden)
		case errors.Is(err, services.ErrInvalidTransition):
			return utils.ErrorResponse(c, "Illegal status transition", fiber.StatusBadRequest)
		}
		log.Printf("Failed to update property %s: %v", c.Params("id"), err)
		return utils.ErrorResponse(c, "Failed to update property", fiber.StatusInternalServerError)
	}

	h.invalidateListCache(c)

	return c.Status(fiber.StatusOK).JSON(property)
}

// Delete handles DELETE /api/properties/:id
// @Summary Delete a property
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /properties/{id} [delete]
func (h *PropertyHandler) Delete(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	if err := services.DeleteProperty(h.DB, user.ID, c.Params("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return utils.NotFoundResponse(c, "Property not found")
		case errors.Is(err, services.ErrNotOwner):
			return utils.ErrorResponse(c, "You do not own this property", fiber.StatusForbidden)
		}
		log.Printf("Failed to delete property %s: %v", c.Params("id"), err)
		return utils.ErrorResponse(c, "Failed to delete property", fiber.StatusInternalServerError)
	}

	h.invalidateListCache(c)

	return utils.SuccessResponse(c)
}

func (h *PropertyHandler) invalidateListCache(c *fiber.Ctx) {
	if err := h.Cache.Invalidate(c.Context(), listCachePrefix); err != nil {
		log.Printf("Failed to invalidate property list cache: %v", err)
	}
}

// toUpdates converts the set fields into a column update map.
func (r *UpdatePropertyRequest) toUpdates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Title != nil {
		updates["title"] = *r.Title
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Price != nil {
		updates["price"] = int64(r.Price.Uint64())
	}
	if r.Beds != nil {
		updates["beds"] = *r.Beds
	}
	if r.Baths != nil {
		updates["baths"] = *r.Baths
	}
	if r.Sqft != nil {
		updates["sqft"] = *r.Sqft
	}
	if r.Location != nil {
		updates["location"] = *r.Location
	}
	if r.Address != nil {
		updates["address"] = *r.Address
	}
	if r.City != nil {
		updates["city"] = *r.City
	}
	if r.State != nil {
		updates["state"] = *r.State
	}
	if r.ZipCode != nil {
		updates["zip_code"] = *r.ZipCode
	}
	if r.Country != nil {
		updates["country"] = *r.Country
	}
	if r.Type != nil {
		updates["type"] = *r.Type
	}
	if r.Status != nil {
		updates["status"] = *r.Status
	}
	if r.Featured != nil {
		updates["featured"] = *r.Featured
	}
	if r.Images != nil {
		updates["images"] = models.StringList(r.Images.Slice())
	}
	if r.Amenities != nil {
		updates["amenities"] = models.StringList(r.Amenities.Slice())
	}
	return updates
}

// validationMessage flattens the first validation failure into a readable message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		switch first.Tag() {
		case "required":
			return first.Field() + " is required"
		case "oneof":
			return first.Field() + " must be one of: " + first.Param()
		case "max":
			return first.Field() + " is too long"
		case "gte":
			return first.Field() + " must not be negative"
		}
		return first.Field() + " is invalid"
	}
	return "Invalid input"
}
