package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"bookwise/internal/http-api/dto"
	"bookwise/internal/http-api/middleware"
	"bookwise/internal/http-api/models"
	"bookwise/internal/http-api/repository"
	"bookwise/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserBookHandler struct {
	svc service.UserBookService
}

func NewUserBookHandler(svc service.UserBookService) *UserBookHandler {
	return &UserBookHandler{svc: svc}
}

func (h *UserBookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/", h.Create)
	rg.GET("/", h.List)
	rg.PATCH("/:user_book_id", h.Update)
	rg.DELETE("/:user_book_id", h.Delete)
}

func (h *UserBookHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "UNAUTHORIZED"})
		return
	}

	var req dto.CreateUserBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Create(ctx, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *UserBookHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "UNAUTHORIZED"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, limit := parsePagination(c)

	var filter repository.UserBookFilter
	if s := c.Query("status"); s != "" {
		switch s {
		case models.UserBookStatusRead, models.UserBookStatusToRead, models.UserBookStatusRejected:
			filter.Status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter", "code": "VALIDATION_ERROR"})
			return
		}
	}
	if r := c.Query("is_recommended"); r != "" {
		parsed, err := strconv.ParseBool(r)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_recommended filter", "code": "VALIDATION_ERROR"})
			return
		}
		filter.IsRecommended = &parsed
	}

	resp, err := h.svc.List(ctx, userID, filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserBookHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "UNAUTHORIZED"})
		return
	}

	id := c.Param("user_book_id")

	var req dto.UpdateUserBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Update(ctx, id, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserBookHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "UNAUTHORIZED"})
		return
	}

	id := c.Param("user_book_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
