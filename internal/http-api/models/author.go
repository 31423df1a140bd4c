package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Author rows are created lazily and never updated. Lookups are
// case-insensitive by name so the same author is not inserted twice.
type Author struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid"`
	Name string `json:"name" gorm:"not null;index"`

	// Associations
	Books []Book `json:"books,omitempty" gorm:"many2many:book_authors;"`
}

func (a *Author) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

func (Author) TableName() string {
	return "authors"
}
