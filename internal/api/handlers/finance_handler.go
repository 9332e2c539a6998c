package handlers

import (
	"net/http"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type FinanceHandler struct {
	financeService *service.FinanceService
}

func NewFinanceHandler(financeService *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

func (h *FinanceHandler) Create(c *gin.Context) {
	var in domain.CreateEntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.financeService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *FinanceHandler) List(c *gin.Context) {
	filter := domain.EntryFilter{
		Kind:   domain.EntryKind(c.Query("kind")),
		Status: domain.EntryStatus(c.Query("status")),
		LotID:  parseOptionalInt64(c.Query("lot_id")),
		From:   parseOptionalDate(c.Query("from")),
		To:     parseOptionalDate(c.Query("to")),
	}

	entries, err := h.financeService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Settle marks a pending entry as paid (expense) or received (revenue)
func (h *FinanceHandler) Settle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body struct {
		SettledDate *time.Time `json:"settled_date"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	entry, err := h.financeService.MarkSettled(c.Request.Context(), id, body.SettledDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *FinanceHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	entry, err := h.financeService.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CashFlow summarizes the ledger over a due-date window; defaults to the
// current month when no range is given.
func (h *FinanceHandler) CashFlow(c *gin.Context) {
	from := parseOptionalDate(c.Query("from"))
	to := parseOptionalDate(c.Query("to"))
	if from == nil || to == nil {
		start, end := domain.MonthWindow(time.Now())
		if from == nil {
			from = &start
		}
		if to == nil {
			to = &end
		}
	}

	summary, err := h.financeService.CashFlow(c.Request.Context(), *from, *to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
