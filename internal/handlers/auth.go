package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/renthaven/renthaven/internal/config"
	"github.com/renthaven/renthaven/internal/services"
	"github.com/renthaven/renthaven/internal/types"
	"github.com/renthaven/renthaven/internal/utils"
)

// AuthHandler proxies authentication flows to the Authorizer service
type AuthHandler struct {
	Cfg *config.Config
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Description Authenticate with email and password; sets the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "Credentials"
// @Success 200 {object} models.AuthUser
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body credentialsRequest
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Password == "" {
		return utils.ErrorResponse(c, "Email and password are required", fiber.StatusBadRequest)
	}

	result, err := services.Login(h.Cfg, body.Email, body.Password)
	if err != nil {
		log.Printf("Login failed for %s: %v", body.Email, err)
		// Provider-reported failures carry the provider's message
		var cerr *types.CustomError
		if errors.As(err, &cerr) {
			return utils.ErrorResponse(c, cerr.Message, fiber.StatusUnauthorized)
		}
		return utils.ErrorResponse(c, "Failed to sign in", fiber.StatusUnauthorized)
	}

	// Forward the provider's session cookies verbatim
	for _, cookie := range result.SetCookies {
		c.Response().Header.Add(fiber.HeaderSetCookie, cookie)
	}

	return c.Status(fiber.StatusOK).JSON(result.User)
}

// Signup handles POST /api/auth/signup
// @Summary Sign up
// @Description Register a new account with the identity provider
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var body credentialsRequest
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Password == "" {
		return utils.ErrorResponse(c, "Email and password are required", fiber.StatusBadRequest)
	}

	if err := services.InitAuthorizer(h.Cfg, c.Protocol(), c.Hostname()); err != nil {
		log.Printf("Authorizer unavailable: %v", err)
		return utils.ErrorResponse(c, "Authentication service unavailable", fiber.StatusServiceUnavailable)
	}

	if err := services.SignUp(body.Email, body.Password); err != nil {
		log.Printf("Signup failed for %s: %v", body.Email, err)
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	}

	return utils.SuccessResponse(c)
}

// Logout handles POST /api/auth/logout
// @Summary Sign out
// @Description Revoke the current session and clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	setCookies, err := services.Logout(h.Cfg, c.Get(fiber.HeaderCookie))
	if err != nil {
		log.Printf("Logout failed: %v", err)
		return utils.ErrorResponse(c, "Failed to sign out", fiber.StatusInternalServerError)
	}

	for _, cookie := range setCookies {
		c.Response().Header.Add(fiber.HeaderSetCookie, cookie)
	}

	return utils.SuccessResponse(c)
}

// ForgotPassword handles POST /api/auth/forgot-password
// @Summary Request a password reset
// @Description Ask the identity provider to send a password reset email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body emailRequest true "Account email"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var body emailRequest
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return utils.ErrorResponse(c, "Email is required", fiber.StatusBadRequest)
	}

	if err := services.ForgotPassword(h.Cfg, body.Email); err != nil {
		log.Printf("Forgot password failed for %s: %v", body.Email, err)
		var cerr *types.CustomError
		if errors.As(err, &cerr) {
			return utils.ErrorResponse(c, cerr.Message, fiber.StatusBadRequest)
		}
		return utils.ErrorResponse(c, "Failed to request password reset", fiber.StatusBadRequest)
	}

	return utils.SuccessResponse(c)
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Description Return the user for the active session
// @Tags Auth
// @Produce json
// @Success 200 {object} models.AuthUser
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return utils.UnauthorizedResponse(c)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}
