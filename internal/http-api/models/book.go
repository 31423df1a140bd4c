package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Title     string    `json:"title" gorm:"not null;index"`
	Language  string    `json:"language" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	Authors []Author `json:"authors,omitempty" gorm:"many2many:book_authors;"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func (Book) TableName() string {
	return "books"
}
