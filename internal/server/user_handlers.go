package server

import (
	"strings"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
}

// CreateUser handles POST /users/
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body createUserRequest true "User registration"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/ [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	existing, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("User already exists"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Email:       req.Email,
		Password:    string(hashed),
		PhoneNumber: req.PhoneNumber,
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "user create failed", "error", err)
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser handles GET /users/:id
// @Summary Fetch a user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	user, err := s.userRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// DeleteAllUsers handles DELETE /users/
// @Summary Delete all users
// @Tags users
// @Produce json
// @Success 200 {object} object{message=string,deleted=int}
// @Router /users/ [delete]
func (s *Server) DeleteAllUsers(c *fiber.Ctx) error {
	deleted, err := s.userRepo.DeleteAll(c.UserContext())
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "bulk user delete failed", "error", err)
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "deleted all users", "count", deleted)
	return c.JSON(fiber.Map{
		"message": "all users deleted",
		"deleted": deleted,
	})
}
