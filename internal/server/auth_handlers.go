package server

import (
	"pulse/internal/middleware"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /login
// @Summary User login
// @Description Exchange credentials for a bearer token. Accepts form fields
// @Description (username/password, where username carries the email) or JSON.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string true "Email address"
// @Param password formData string true "Password"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Form logins send the email in the username field.
	email := req.Email
	if email == "" {
		email = req.Username
	}
	if email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Unknown account and wrong password get the same response so the
	// endpoint cannot be used to probe which emails exist.
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "token issue failed", "error", err, "user_id", user.ID)
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}
