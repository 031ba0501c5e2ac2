package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/make-it-kro/lunch-poll/backend/internal/ledger"
	"github.com/make-it-kro/lunch-poll/backend/internal/report"
)

type ReportHandler struct {
	ledger *ledger.Ledger
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{ledger: ledger.New(db)}
}

// Weekly returns the rolling participation report over prior weekdays.
func (h *ReportHandler) Weekly(c *gin.Context) {
	polls, err := h.ledger.AllPolls(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load poll history"})
		return
	}

	c.JSON(http.StatusOK, report.Build(polls, ledger.Today()))
}
