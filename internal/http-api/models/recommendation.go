package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recommendation statuses. A recommendation starts pending and transitions
// at most once to accepted or rejected.
const (
	RecommendationStatusPending  = "pending"
	RecommendationStatusAccepted = "accepted"
	RecommendationStatusRejected = "rejected"
)

type Recommendation struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID        string    `json:"user_id" gorm:"type:uuid;not null;index"`
	BookID        string    `json:"book_id" gorm:"type:uuid;not null"`
	PlotSummary   string    `json:"plot_summary" gorm:"not null"`
	Rationale     string    `json:"rationale" gorm:"not null"`
	AIModel       string    `json:"ai_model" gorm:"column:ai_model;not null"`
	ExecutionTime float64   `json:"execution_time" gorm:"not null"` // seconds
	Status        string    `json:"status" gorm:"not null;index;check:status IN ('pending','accepted','rejected')"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
}

func (r *Recommendation) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

func (Recommendation) TableName() string {
	return "recommendations"
}

// IsTerminal reports whether the recommendation has already been resolved.
func (r *Recommendation) IsTerminal() bool {
	return r.Status == RecommendationStatusAccepted || r.Status == RecommendationStatusRejected
}
