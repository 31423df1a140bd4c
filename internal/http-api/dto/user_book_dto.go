package dto

import (
	"time"

	"bookwise/internal/http-api/models"
)

// CreateBookInput: the book part of a user-book creation payload
type CreateBookInput struct {
	Title    string              `json:"title" binding:"required,min=1,max=255"`
	Language string              `json:"language" binding:"required,min=2,max=50"`
	Authors  []CreateAuthorInput `json:"authors" binding:"required,min=1,dive"`
}

type CreateAuthorInput struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// CreateUserBookRequest: payload to track a book as read/to_read/rejected
type CreateUserBookRequest struct {
	Book             CreateBookInput `json:"book" binding:"required"`
	Status           string          `json:"status" binding:"required,oneof=read to_read rejected"`
	Rating           *bool           `json:"rating"`
	RecommendationID *string         `json:"recommendation_id" binding:"omitempty,uuid"`
}

// UpdateUserBookRequest: partial update of status and/or rating
type UpdateUserBookRequest struct {
	Status *string `json:"status" binding:"omitempty,oneof=read to_read rejected"`
	Rating *bool   `json:"rating"`
}

// UserBookResponse: a tracked book joined with book and author data
type UserBookResponse struct {
	ID               string           `json:"id"`
	BookID           string           `json:"book_id"`
	Title            string           `json:"title"`
	Language         string           `json:"language"`
	Authors          []AuthorResponse `json:"authors"`
	Status           string           `json:"status"`
	Rating           *bool            `json:"rating"`
	IsRecommended    bool             `json:"is_recommended"`
	RecommendationID *string          `json:"recommendation_id"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// PaginatedUserBooksResponse: listing envelope
type PaginatedUserBooksResponse struct {
	Data       []UserBookResponse `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

func FromUserBookModel(ub models.UserBook) UserBookResponse {
	resp := UserBookResponse{
		ID:               ub.ID,
		BookID:           ub.BookID,
		Status:           ub.Status,
		Rating:           ub.Rating,
		IsRecommended:    ub.IsRecommended,
		RecommendationID: ub.RecommendationID,
		CreatedAt:        ub.CreatedAt,
		UpdatedAt:        ub.UpdatedAt,
	}
	if ub.Book != nil {
		resp.Title = ub.Book.Title
		resp.Language = ub.Book.Language
		resp.Authors = make([]AuthorResponse, 0, len(ub.Book.Authors))
		for _, a := range ub.Book.Authors {
			resp.Authors = append(resp.Authors, FromAuthorModel(a))
		}
	}
	return resp
}
