package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPreferences holds one row per user; creation conflicts if a row exists.
type UserPreferences struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID             string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	ReadingPreferences string    `json:"reading_preferences" gorm:"size:1000;not null"`
	PreferredLanguage  string    `json:"preferred_language" gorm:"size:50;not null"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (p *UserPreferences) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}
