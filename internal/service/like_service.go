package service

import (
	"context"

	"pulse/internal/cache"
	"pulse/internal/models"
	"pulse/internal/repository"
)

// LikeService applies toggle semantics to the like relation: a user's like
// on a post is flipped on each call, so two consecutive calls restore the
// prior state. Any authenticated user may like any post.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

// NewLikeService returns a LikeService backed by the given repositories.
func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo}
}

// Toggle flips the like state for (userID, postID) and reports the new state:
// true when the call liked the post, false when it unliked it.
//
// Concurrent toggles on the same key are detected at the storage boundary:
// an insert or delete that affects no rows means another request changed the
// state between our read and write. One internal retry re-reads and re-applies;
// a second miss surfaces as a conflict the caller may retry.
func (s *LikeService) Toggle(ctx context.Context, userID, postID uint) (bool, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, models.NewNotFoundError("Post", postID)
	}

	for attempt := 0; attempt < 2; attempt++ {
		liked, err := s.likeRepo.IsLiked(ctx, userID, postID)
		if err != nil {
			return false, err
		}

		if liked {
			deleted, err := s.likeRepo.Delete(ctx, userID, postID)
			if err != nil {
				return false, err
			}
			if deleted {
				cache.AdjustLikeCount(ctx, postID, -1)
				cache.Invalidate(ctx, cache.PostKey(postID))
				return false, nil
			}
		} else {
			inserted, err := s.likeRepo.Insert(ctx, userID, postID)
			if err != nil {
				return false, err
			}
			if inserted {
				cache.AdjustLikeCount(ctx, postID, 1)
				cache.Invalidate(ctx, cache.PostKey(postID))
				return true, nil
			}
		}
		// State changed underneath us; re-read and retry once.
	}

	return false, models.NewConflictError("Like was modified concurrently, please retry")
}

// LikeCount returns the number of likes on a post, serving from the cached
// counter when warm and filling it from the store on a miss.
func (s *LikeService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	if n, ok := cache.GetLikeCount(ctx, postID); ok {
		return n, nil
	}
	n, err := s.likeRepo.CountForPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	cache.SetLikeCount(ctx, postID, n)
	return n, nil
}
