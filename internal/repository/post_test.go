package repository

import (
	"context"
	"regexp"
	"testing"

	"pulse/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Title: "First", Content: "Hello", Published: true, UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "title", "content", "user_id", "likes"}).
		AddRow(1, "First", "Hello", 101, 2)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes FROM "posts"`)).
		WithArgs(1, 1).
		WillReturnRows(rows)

	// Preload of the owner
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(101).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(101, "owner@example.com"))

	post, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "First", post.Title)
	assert.Equal(t, 2, post.Likes)
	assert.Equal(t, "owner@example.com", post.User.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes FROM "posts"`)).
		WithArgs(99, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.GetByID(ctx, 99)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "title", "content", "user_id", "likes"}).
		AddRow(1, "go tips", "a", 101, 0).
		AddRow(3, "more go", "b", 102, 5)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes FROM "posts" WHERE posts.title LIKE $1 ORDER BY posts.id ASC LIMIT $2`)).
		WithArgs("%go%", 10).
		WillReturnRows(rows)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" IN ($1,$2)`)).
		WithArgs(101, 102).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(101, "a@example.com").
			AddRow(102, "b@example.com"))

	posts, err := repo.List(ctx, "go", 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, uint(1), posts[0].ID)
	assert.Equal(t, uint(3), posts[1].ID)
	assert.Equal(t, 5, posts[1].Likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	post := &models.Post{ID: 1, Title: "Updated", Content: "New content"}
	err := repo.Update(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	// Likes referencing the post fall in the same transaction.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE "posts"."id" = $1`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Exists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE id = $1`)).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err = repo.Exists(ctx, 99)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
