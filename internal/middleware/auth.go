package middleware

import (
	"context"
	"errors"
	"strings"

	"pulse/internal/auth"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns middleware that enforces bearer-token authentication
// for protected routes. The resolved user ID is stored in Fiber locals and
// synced into the request context for logging and downstream services.
//
// Expired tokens get a distinct TOKEN_EXPIRED response so clients can prompt
// re-login; every other failure collapses into a generic 401.
func AuthRequired(guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := guard.Authenticate(bearerToken(c))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewTokenExpiredError())
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid credentials"))
		}

		c.Locals("userID", identity.UserID)
		ctx := context.WithValue(c.UserContext(), UserIDKey, identity.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" when the header is absent or not in bearer form.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
