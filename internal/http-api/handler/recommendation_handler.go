package handler

import (
	"context"
	"net/http"
	"time"

	"bookwise/internal/http-api/dto"
	"bookwise/internal/http-api/middleware"
	"bookwise/internal/http-api/models"
	"bookwise/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	svc service.RecommendationService
}

func NewRecommendationHandler(svc service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

func (h *RecommendationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/", h.Generate)
	rg.GET("/", h.List)
	rg.PUT("/:recommendation_id", h.UpdateStatus)
}

// Generate runs the full AI orchestration. No handler-side timeout here:
// the service bounds the gateway call itself, and the surrounding work
// (prompt assembly, persistence) rides on the request context.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "UNAUTHORIZED"})
		return
	}

	rec, err := h.svc.Generate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *RecommendationHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "UNAUTHORIZED"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, limit := parsePagination(c)

	var status *string
	if s := c.Query("status"); s != "" {
		switch s {
		case models.RecommendationStatusPending,
			models.RecommendationStatusAccepted,
			models.RecommendationStatusRejected:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter", "code": "VALIDATION_ERROR"})
			return
		}
	}

	resp, err := h.svc.List(ctx, userID, status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecommendationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "UNAUTHORIZED"})
		return
	}

	id := c.Param("recommendation_id")

	var req dto.UpdateRecommendationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_ERROR"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.svc.UpdateStatus(ctx, id, userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
