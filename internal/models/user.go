// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Password holds the bcrypt digest and
// is never serialized or logged.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"unique;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Posts       []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
