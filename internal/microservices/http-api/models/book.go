package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a catalogue entry. Available is false exactly when BorrowedBy is set.
type Book struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Author      string    `gorm:"not null;index" json:"author"`
	Genre       string    `gorm:"not null;index" json:"genre"`
	PublishDate Date      `gorm:"type:date;not null" json:"publishDate"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CoverImage  string    `gorm:"not null" json:"coverImage"`
	Available   bool      `gorm:"not null;default:true" json:"available"`
	BorrowedBy  *string   `gorm:"type:uuid;index" json:"borrowedBy"`
	CreatedBy   string    `gorm:"type:uuid;not null" json:"createdBy"`
	Version     int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate hook to set UUID before creating a Book
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

func (Book) TableName() string {
	return "books"
}

// IsBorrowedBy reports whether userID currently holds the book.
func (b *Book) IsBorrowedBy(userID string) bool {
	return b.BorrowedBy != nil && *b.BorrowedBy == userID
}
