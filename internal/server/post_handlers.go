package server

import (
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published *bool  `json:"published"`
}

// GetPosts handles GET /posts/
// @Summary List posts
// @Description Returns posts ordered by ID with like counts, optionally
// @Description filtered by a title substring.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 10)"
// @Param skip query int false "Offset (default 0)"
// @Param search query string false "Title substring filter"
// @Success 200 {array} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/ [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	posts, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /posts/
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "Post payload"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/ [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Identity:  identity,
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /posts/:id
// @Summary Fetch a post with its like count
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	// Single-post reads serve the like count from the cached counter, which
	// toggles adjust in place; without Redis this falls back to the store.
	if n, err := s.likeService.LikeCount(c.UserContext(), post.ID); err == nil {
		post.Likes = int(n)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /posts/:id
// @Summary Update a post's title and content
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body postRequest true "Updated fields"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	id, okID := parseID(c, "id")
	if !okID {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		Identity: identity,
		PostID:   id,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /posts/:id
// @Summary Delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	id, okID := parseID(c, "id")
	if !okID {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), identity, id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAllPosts handles DELETE /posts/
// @Summary Delete all posts
// @Tags posts
// @Security BearerAuth
// @Success 204
// @Router /posts/ [delete]
func (s *Server) DeleteAllPosts(c *fiber.Ctx) error {
	deleted, err := s.postService.DeleteAllPosts(c.UserContext())
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "bulk post delete failed", "error", err)
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "deleted all posts", "count", deleted)
	return c.SendStatus(fiber.StatusNoContent)
}
