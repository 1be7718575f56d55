package service

import (
	"testing"

	"pulse/internal/auth"
	"pulse/internal/models"
	"pulse/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
	))
	return db
}

func newTestServices(t *testing.T) (*gorm.DB, *PostService, *LikeService) {
	t.Helper()

	db := setupServiceTestDB(t)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	guard := auth.NewGuard(auth.NewTokenService("test-secret", 0))

	return db, NewPostService(postRepo, guard), NewLikeService(likeRepo, postRepo)
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Password: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, title string) *models.Post {
	t.Helper()

	post := &models.Post{Title: title, Content: "content", Published: true, UserID: userID}
	require.NoError(t, db.Create(post).Error)
	return post
}
