package handlers

import (
	"net/http"
	"time"

	"github.com/confinapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type DREHandler struct {
	dreService *service.DREService
}

func NewDREHandler(dreService *service.DREService) *DREHandler {
	return &DREHandler{dreService: dreService}
}

// Generate builds (or rebuilds) the income statement for a month.
func (h *DREHandler) Generate(c *gin.Context) {
	var body struct {
		ReferenceMonth string `json:"reference_month"`
		CycleID        *int64 `json:"cycle_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	month, ok := parseMonth(body.ReferenceMonth)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference_month must be YYYY-MM"})
		return
	}

	st, err := h.dreService.Generate(c.Request.Context(), month, body.CycleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *DREHandler) Get(c *gin.Context) {
	month, ok := parseMonth(c.Query("month"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}
	cycleID := parseOptionalInt64(c.Query("cycle_id"))

	st, err := h.dreService.Get(c.Request.Context(), month, cycleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// List returns stored statements over a month range; defaults to the
// trailing twelve months.
func (h *DREHandler) List(c *gin.Context) {
	now := time.Now()
	from := now.AddDate(-1, 0, 0)
	to := now
	if month, ok := parseMonth(c.Query("from")); ok {
		from = month
	}
	if month, ok := parseMonth(c.Query("to")); ok {
		to = month.AddDate(0, 1, 0)
	}

	statements, err := h.dreService.List(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statements)
}
