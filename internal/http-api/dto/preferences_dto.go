package dto

import (
	"time"

	"bookwise/internal/http-api/models"
)

// CreatePreferencesRequest: one row per user, conflict on re-create
type CreatePreferencesRequest struct {
	ReadingPreferences string `json:"reading_preferences" binding:"required,max=1000"`
	PreferredLanguage  string `json:"preferred_language" binding:"required,min=2,max=50"`
}

// UpdatePreferencesRequest: replaces both fields
type UpdatePreferencesRequest struct {
	ReadingPreferences string `json:"reading_preferences" binding:"required,max=1000"`
	PreferredLanguage  string `json:"preferred_language" binding:"required,min=2,max=50"`
}

type PreferencesResponse struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	ReadingPreferences string    `json:"reading_preferences"`
	PreferredLanguage  string    `json:"preferred_language"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func FromPreferencesModel(p models.UserPreferences) PreferencesResponse {
	return PreferencesResponse{
		ID:                 p.ID,
		UserID:             p.UserID,
		ReadingPreferences: p.ReadingPreferences,
		PreferredLanguage:  p.PreferredLanguage,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
