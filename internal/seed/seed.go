// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"pulse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// seedPassword is the plaintext password every seeded account gets,
// so seeded users can be logged in during manual testing.
const seedPassword = "password123"

// Run populates the database with fake users, posts, and likes.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		log.Println("Cleaning existing data...")
		if err := clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	log.Printf("Creating %d users...", opts.NumUsers)
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user := &models.User{
			Email:       fmt.Sprintf("%d.%s", gofakeit.Number(100, 999), gofakeit.Email()),
			Password:    string(hashed),
			PhoneNumber: gofakeit.Phone(),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}

	log.Printf("Creating %d posts...", opts.NumPosts)
	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[rand.Intn(len(users))]
		post := &models.Post{
			Title:     gofakeit.Sentence(5),
			Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
			Published: rand.Intn(10) != 0,
			UserID:    author.ID,
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}

	log.Println("Creating likes...")
	likeCount := 0
	for _, post := range posts {
		// Each post gets likes from a random slice of users.
		n := rand.Intn(len(users)/2 + 1)
		for _, idx := range rand.Perm(len(users))[:n] {
			like := &models.Like{
				UserID: users[idx].ID,
				PostID: post.ID,
			}
			result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
			if result.Error != nil {
				return fmt.Errorf("create like: %w", result.Error)
			}
			likeCount += int(result.RowsAffected)
		}
	}

	log.Printf("Seeded %d users, %d posts, %d likes", len(users), len(posts), likeCount)
	return nil
}

func clean(db *gorm.DB) error {
	for _, model := range []interface{}{&models.Like{}, &models.Post{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
