package server

import (
	"strconv"

	"pulse/internal/auth"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// parsePagination reads limit/skip query parameters with sane bounds.
func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	// skip is the canonical name; offset is accepted as an alias.
	offset = c.QueryInt("skip", -1)
	if offset < 0 {
		offset = c.QueryInt("offset", 0)
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// parseID parses a numeric path parameter. On failure it writes a 400
// response and returns false.
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+name+" parameter"))
		return 0, false
	}
	return uint(id), true
}

// currentIdentity extracts the authenticated user placed by AuthRequired.
func currentIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return auth.Identity{}, false
	}
	return auth.Identity{UserID: userID}, true
}
