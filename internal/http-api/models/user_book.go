package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserBook statuses
const (
	UserBookStatusRead     = "read"
	UserBookStatusToRead   = "to_read"
	UserBookStatusRejected = "rejected"
)

// UserBook is one user's tracked relationship to one book.
// (user_id, book_id) is unique; Rating must be set when Status is "read".
type UserBook struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID           string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_book"`
	BookID           string    `json:"book_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_book"`
	Status           string    `json:"status" gorm:"not null;index;check:status IN ('read','to_read','rejected')"`
	Rating           *bool     `json:"rating"`
	IsRecommended    bool      `json:"is_recommended" gorm:"default:false;index"`
	RecommendationID *string   `json:"recommendation_id" gorm:"type:uuid"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
}

func (ub *UserBook) BeforeCreate(tx *gorm.DB) (err error) {
	if ub.ID == "" {
		ub.ID = uuid.New().String()
	}
	return
}

func (UserBook) TableName() string {
	return "user_books"
}
