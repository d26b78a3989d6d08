package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/renthaven/renthaven/internal/middleware"
	"github.com/renthaven/renthaven/internal/models"
)

// currentUser pulls the authenticated user placed in context by the auth
// middleware. Handlers answer 401 themselves when the user is absent.
func currentUser(c *fiber.Ctx) (*models.AuthUser, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// parseMultiQuery extracts a multi-value query parameter, supporting both
// repeated keys and comma-separated values.
func parseMultiQuery(c *fiber.Ctx, name string) []string {
	valueMap := make(map[string]struct{})

	// Visit all query arguments to collect repeated keys
	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) == name {
			// Split by comma in case the value itself is comma-separated
			vals := strings.Split(string(value), ",")
			for _, v := range vals {
				v = strings.TrimSpace(v)
				if v != "" {
					valueMap[v] = struct{}{}
				}
			}
		}
	}

	if len(valueMap) == 0 {
		return nil
	}

	values := make([]string, 0, len(valueMap))
	for k := range valueMap {
		values = append(values, k)
	}

	return values
}
