// Package service contains the application's business logic.
package service

import (
	"context"

	"pulse/internal/auth"
	"pulse/internal/models"
	"pulse/internal/repository"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// PostService implements post CRUD with ownership-gated mutations and the
// like-count aggregation queries.
type PostService struct {
	postRepo repository.PostRepository
	guard    *auth.Guard
}

// CreatePostInput carries the fields for creating a post. The owner is
// always the authenticated caller.
type CreatePostInput struct {
	Identity  auth.Identity
	Title     string
	Content   string
	Published *bool
}

// ListPostsInput carries the pagination and search filter for listing posts.
type ListPostsInput struct {
	Search string
	Limit  int
	Offset int
}

// UpdatePostInput carries the fields for updating a post's title and content.
type UpdatePostInput struct {
	Identity auth.Identity
	PostID   uint
	Title    string
	Content  string
}

// NewPostService returns a PostService backed by the given repository and guard.
func NewPostService(postRepo repository.PostRepository, guard *auth.Guard) *PostService {
	return &PostService{postRepo: postRepo, guard: guard}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	published := true
	if in.Published != nil {
		published = *in.Published
	}

	post := &models.Post{
		Title:     in.Title,
		Content:   in.Content,
		Published: published,
		UserID:    in.Identity.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Re-read for the owner association and computed like count.
	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns posts matching the search filter joined with their live
// like counts, ordered by ascending id. Limit defaults to 10 and is capped.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	return s.postRepo.List(ctx, in.Search, limit, offset)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost replaces the post's title and content. The existence check runs
// before the ownership check so probing an unknown id reports not-found, not
// forbidden.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeOwner(in.Identity, post.UserID); err != nil {
		return nil, models.NewForbiddenError("not authorized to perform this action")
	}

	post.Title = in.Title
	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes the post. Same existence-before-ownership ordering as
// UpdatePost.
func (s *PostService) DeletePost(ctx context.Context, identity auth.Identity, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeOwner(identity, post.UserID); err != nil {
		return models.NewForbiddenError("not authorized to perform this action")
	}

	return s.postRepo.Delete(ctx, postID)
}

// DeleteAllPosts removes every post and returns how many were deleted.
func (s *PostService) DeleteAllPosts(ctx context.Context) (int64, error) {
	return s.postRepo.DeleteAll(ctx)
}
