package handler

import (
	"errors"
	"net/http"
	"strconv"

	"bookwise/internal/ai"
	"bookwise/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service sentinel errors to HTTP responses. Anything
// unrecognized is reported as an internal error without leaking the cause.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPreferencesRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "PREFERENCES_REQUIRED"})
	case errors.Is(err, service.ErrRatingRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "RATING_REQUIRED"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "FORBIDDEN"})
	case errors.Is(err, service.ErrRecommendationNotFound),
		errors.Is(err, service.ErrUserBookNotFound),
		errors.Is(err, service.ErrPreferencesNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, service.ErrAlreadyInCollection),
		errors.Is(err, service.ErrPreferencesExist),
		errors.Is(err, service.ErrPendingExists),
		errors.Is(err, service.ErrAlreadyResolved),
		errors.Is(err, service.ErrGenerationInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "CONFLICT"})
	case errors.Is(err, ai.ErrUnavailable), errors.Is(err, ai.ErrMalformed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "recommendation service unavailable", "code": "AI_GATEWAY_ERROR"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "INTERNAL_ERROR"})
	}
}

// parsePagination reads page and limit query parameters, defaulting to
// page 1 with 10 items and capping limit at 100.
func parsePagination(c *gin.Context) (page, limit int) {
	page = 1
	limit = 10

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	return page, limit
}
