package handlers

import (
	"net/http"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type LotHandler struct {
	lotService *service.LotService
}

func NewLotHandler(lotService *service.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// Create confirms a lot purchase
func (h *LotHandler) Create(c *gin.Context) {
	var in domain.CreateLotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lot, err := h.lotService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// List returns lots, optionally filtered by status
func (h *LotHandler) List(c *gin.Context) {
	var status domain.LotStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := domain.ParseLotStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}
		status = parsed
	}

	lots, err := h.lotService.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

func (h *LotHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lot, err := h.lotService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// RegisterReception moves a confirmed lot to received
func (h *LotHandler) RegisterReception(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in domain.ReceptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lot, err := h.lotService.RegisterReception(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// MarkAsConfined distributes a received lot across pens
func (h *LotHandler) MarkAsConfined(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in domain.ConfinementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lot, err := h.lotService.MarkAsConfined(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// UpdateStatus is the administrative status override
func (h *LotHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	status, ok := domain.ParseLotStatus(body.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
		return
	}

	lot, err := h.lotService.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.lotService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Allocations returns the lot's active pen allocations
func (h *LotHandler) Allocations(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	allocations, err := h.lotService.Allocations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allocations)
}

// Weighings returns the lot's weight readings
func (h *LotHandler) Weighings(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	weighings, err := h.lotService.Weighings(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, weighings)
}
