package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/renthaven/renthaven/internal/config"
	"github.com/renthaven/renthaven/internal/services"
	"github.com/renthaven/renthaven/internal/utils"
)

// UploadHandler handles file upload routes
type UploadHandler struct {
	Cfg *config.Config
}

type deleteFileRequest struct {
	Path string `json:"path"`
}

// Create handles POST /api/upload
// @Summary Upload files
// @Description Upload one or more files into the user's storage namespace
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /upload [post]
func (h *UploadHandler) Create(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	form, err := c.MultipartForm()
	if err != nil || form == nil || len(form.File["files"]) == 0 {
		return utils.ErrorResponse(c, "No files provided", fiber.StatusBadRequest)
	}

	stored, err := services.SaveFiles(h.Cfg, user.ID, form.File["files"])
	if err != nil {
		log.Printf("Failed to store upload for user %s: %v", user.ID, err)
		return utils.ErrorResponse(c, "Failed to upload files", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"files":   stored,
	})
}

// Delete handles DELETE /api/upload
// @Summary Delete a stored file
// @Description Delete a stored object by path, confined to the user's namespace
// @Tags Upload
// @Accept json
// @Produce json
// @Param body body deleteFileRequest true "Object path"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /upload [delete]
func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}

	var body deleteFileRequest
	if err := c.BodyParser(&body); err != nil || body.Path == "" {
		return utils.ErrorResponse(c, "No file path provided", fiber.StatusBadRequest)
	}

	if err := services.DeleteFile(h.Cfg, user.ID, body.Path); err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			return utils.ErrorResponse(c, "Cannot delete files outside your namespace", fiber.StatusForbidden)
		}
		log.Printf("Failed to delete file for user %s: %v", user.ID, err)
		return utils.ErrorResponse(c, "Failed to delete file", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "File deleted successfully",
	})
}
