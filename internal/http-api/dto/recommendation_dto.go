package dto

import (
	"time"

	"bookwise/internal/http-api/models"
)

// AuthorResponse: one author of a book
type AuthorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BookResponse: a book joined with its authors
type BookResponse struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Language string           `json:"language"`
	Authors  []AuthorResponse `json:"authors"`
}

// RecommendationResponse: a recommendation joined with its book and authors
type RecommendationResponse struct {
	ID            string       `json:"id"`
	Book          BookResponse `json:"book"`
	PlotSummary   string       `json:"plot_summary"`
	Rationale     string       `json:"rationale"`
	AIModel       string       `json:"ai_model"`
	ExecutionTime float64      `json:"execution_time"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// UpdateRecommendationStatusRequest: accept/reject payload
type UpdateRecommendationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// PaginatedRecommendationsResponse: listing envelope
type PaginatedRecommendationsResponse struct {
	Data       []RecommendationResponse `json:"data"`
	Pagination Pagination               `json:"pagination"`
}

func FromAuthorModel(a models.Author) AuthorResponse {
	return AuthorResponse{ID: a.ID, Name: a.Name}
}

func FromBookModel(b models.Book) BookResponse {
	authors := make([]AuthorResponse, 0, len(b.Authors))
	for _, a := range b.Authors {
		authors = append(authors, FromAuthorModel(a))
	}
	return BookResponse{
		ID:       b.ID,
		Title:    b.Title,
		Language: b.Language,
		Authors:  authors,
	}
}

func FromRecommendationModel(r models.Recommendation) RecommendationResponse {
	resp := RecommendationResponse{
		ID:            r.ID,
		PlotSummary:   r.PlotSummary,
		Rationale:     r.Rationale,
		AIModel:       r.AIModel,
		ExecutionTime: r.ExecutionTime,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Book != nil {
		resp.Book = FromBookModel(*r.Book)
	}
	return resp
}
