package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps the domain error taxonomy onto HTTP status codes.
// Domain invariant failures surface as-is; anything unrecognized is a 500.
func respondError(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		state      *domain.InvalidStateError
		capacity   *domain.CapacityExceededError
		mismatch   *domain.QuantityMismatchError
		exceeded   *domain.QuantityExceededError
		conflict   *domain.ConflictError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &state):
		c.JSON(http.StatusConflict, gin.H{"error": state.Error()})
	case errors.As(err, &capacity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": capacity.Error()})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": mismatch.Error()})
	case errors.As(err, &exceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": exceeded.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	default:
		log.Error().Err(err).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func parseOptionalInt64(value string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// parseOptionalDate accepts YYYY-MM-DD or full RFC 3339 timestamps.
func parseOptionalDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	return nil
}

// parseMonth accepts YYYY-MM and returns the first instant of that month.
func parseMonth(value string) (time.Time, bool) {
	t, err := time.Parse("2006-01", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
