package handlers

import (
	"net/http"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type MortalityHandler struct {
	mortalityService *service.MortalityService
}

func NewMortalityHandler(mortalityService *service.MortalityService) *MortalityHandler {
	return &MortalityHandler{mortalityService: mortalityService}
}

func (h *MortalityHandler) Record(c *gin.Context) {
	var in domain.MortalityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.mortalityService.Record(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *MortalityHandler) List(c *gin.Context) {
	filter := mortalityFilterFromQuery(c)
	records, err := h.mortalityService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Delete reverses the record's quantity adjustment before removing it
func (h *MortalityHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.mortalityService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MortalityHandler) Statistics(c *gin.Context) {
	filter := mortalityFilterFromQuery(c)
	stats, err := h.mortalityService.Statistics(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func mortalityFilterFromQuery(c *gin.Context) domain.MortalityFilter {
	return domain.MortalityFilter{
		LotID: parseOptionalInt64(c.Query("lot_id")),
		PenID: parseOptionalInt64(c.Query("pen_id")),
		Cause: domain.DeathCause(c.Query("cause")),
		From:  parseOptionalDate(c.Query("from")),
		To:    parseOptionalDate(c.Query("to")),
	}
}
