package server

import (
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
)

type likeRequest struct {
	PostID uint `json:"post_id"`
}

// ToggleLike handles POST /likes/
// @Summary Toggle a like on a post
// @Description Likes the post if the caller has not liked it, removes the
// @Description like otherwise.
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body likeRequest true "Target post"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /likes/ [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	var req likeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	liked, err := s.likeService.Toggle(c.UserContext(), identity.UserID, req.PostID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	message := "successfully removed like"
	if liked {
		message = "successfully added like"
	}
	return c.JSON(fiber.Map{"message": message})
}
