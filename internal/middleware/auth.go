package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/renthaven/renthaven/internal/config"
	"github.com/renthaven/renthaven/internal/models"
	"github.com/renthaven/renthaven/internal/services"
	"github.com/renthaven/renthaven/internal/utils"
)

// UserLocalKey is the context key the authenticated user is stored under.
const UserLocalKey = "user"

// protectedPages are page path prefixes that redirect to the login page
// instead of answering 401.
var protectedPages = []string{
	"/dashboard",
	"/profile",
}

// RequireUser validates the session cookie and stores the authenticated user
// in the request context. Requests without a valid session are answered 401
// {"error":"Unauthorized"} before any service code runs.
func RequireUser(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies("cookie_session")
		if cookie == "" {
			return utils.UnauthorizedResponse(c)
		}

		user, err := validate(c, cfg, cookie)
		if err != nil {
			return utils.UnauthorizedResponse(c)
		}

		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

// RouteGuard classifies page navigations: protected paths without a valid
// session redirect to /login carrying the original path. API paths are
// guarded by RequireUser on their route groups instead. The check runs once
// per request with no retry.
func RouteGuard(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		protected := false
		for _, prefix := range protectedPages {
			if strings.HasPrefix(path, prefix) {
				protected = true
				break
			}
		}
		// Mutations against the root path are never anonymous
		if path == "/" && c.Method() != fiber.MethodGet {
			protected = true
		}

		if !protected {
			return c.Next()
		}

		cookie := c.Cookies("cookie_session")
		if cookie != "" {
			if _, err := validate(c, cfg, cookie); err == nil {
				return c.Next()
			}
		}

		redirect := "/login?redirectedFrom=" + url.QueryEscape(path)
		return c.Redirect(redirect, fiber.StatusFound)
	}
}

// CurrentUser returns the authenticated user set by RequireUser.
func CurrentUser(c *fiber.Ctx) (*models.AuthUser, bool) {
	user, ok := c.Locals(UserLocalKey).(*models.AuthUser)
	return user, ok
}

func validate(c *fiber.Ctx, cfg *config.Config, cookie string) (*models.AuthUser, error) {
	// Authorizer is initialized lazily on the first authenticated request
	if !services.IsAuthorizerInitialized() {
		if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
			return nil, err
		}
	}
	return services.ValidateSession(cookie, []string{"user"})
}
