package repository

import (
	"context"
	"errors"

	"pulse/internal/cache"
	"pulse/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. Reads carry
// the live like count; see applyLikeCount.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, search string, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyLikeCount adds a correlated subquery resolving each post's like count
// in a single query. Posts with no likes resolve to 0; a post is never
// repeated in the result regardless of how many likes reference it.
func (r *postRepository) applyLikeCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.applyLikeCount(r.db.WithContext(ctx)).
			Preload("User").
			First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns posts whose title contains search (empty matches all), ordered
// by ascending id for stable pagination.
func (r *postRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyLikeCount(r.db.WithContext(ctx)).
		Preload("User").
		Where("posts.title LIKE ?", "%"+search+"%").
		Order("posts.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).
		Model(post).
		Updates(map[string]any{"title": post.Title, "content": post.Content}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PostKey(post.ID))
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PostKey(id))
	cache.Invalidate(ctx, cache.LikeCountKey(id))
	return nil
}

// DeleteAll removes every post and the likes referencing them, returning the
// number of posts deleted.
func (r *postRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Where("1 = 1").Delete(&models.Post{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return deleted, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
