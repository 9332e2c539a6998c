package handlers

import (
	"net/http"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type PenHandler struct {
	penService *service.PenService
}

func NewPenHandler(penService *service.PenService) *PenHandler {
	return &PenHandler{penService: penService}
}

func (h *PenHandler) Create(c *gin.Context) {
	var in domain.CreatePenInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pen, err := h.penService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pen)
}

func (h *PenHandler) List(c *gin.Context) {
	pens, err := h.penService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pens)
}

// Occupancy reports how many head a pen holds against its capacity
func (h *PenHandler) Occupancy(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	occupancy, err := h.penService.Occupancy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occupancy)
}
