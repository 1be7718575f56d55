package models

import (
	"time"
)

// Post represents a piece of content owned by a user. UserID is set at
// creation time and never reassigned.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"not null" json:"title"`
	Content   string `gorm:"type:text;not null" json:"content"`
	Published bool   `gorm:"default:true" json:"published"`
	UserID    uint   `gorm:"not null;index" json:"owner_id"`
	User      User   `gorm:"foreignKey:UserID" json:"owner"`
	// Likes is not persisted; computed at query time
	Likes     int       `gorm:"->" json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
