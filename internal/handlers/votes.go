package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/make-it-kro/lunch-poll/backend/internal/ledger"
	"github.com/make-it-kro/lunch-poll/backend/internal/models"
)

// User-facing failure messages, matching the app's original copy.
const (
	msgVoteFailed   = "투표를 기록하지 못했습니다. 다시 시도해주세요."
	msgCancelFailed = "투표 취소에 실패했습니다. 다시 시도해주세요."
)

type VoteHandler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

func NewVoteHandler(db *gorm.DB) *VoteHandler {
	return &VoteHandler{db: db, ledger: ledger.New(db)}
}

// GetToday returns today's live counters plus the caller's own choice.
// The UI refetches this after every write and on its live-update ticks.
func (h *VoteHandler) GetToday(c *gin.Context) {
	uid := c.GetString("uid")
	date := ledger.Today()

	poll, err := h.ledger.PollFor(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load today's poll"})
		return
	}

	myChoice, err := h.ledger.ResponseFor(c.Request.Context(), uid, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load your vote"})
		return
	}

	c.JSON(http.StatusOK, models.TodayPollResponse{
		Date:       date,
		Joining:    poll.Joining,
		NotJoining: poll.NotJoining,
		MyChoice:   myChoice,
	})
}

// Vote records the caller's choice for today.
func (h *VoteHandler) Vote(c *gin.Context) {
	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Choice.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "choice must be \"joining\" or \"notJoining\""})
		return
	}

	uid := c.GetString("uid")
	date := ledger.Today()

	err := h.ledger.RecordVote(c.Request.Context(), uid, input.Choice, date)
	if errors.Is(err, ledger.ErrNotRecorded) {
		c.JSON(http.StatusConflict, gin.H{"error": msgVoteFailed})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgVoteFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "date": date})
}

// Cancel withdraws the caller's vote for today. Cancelling when no vote
// exists reports success trivially.
func (h *VoteHandler) Cancel(c *gin.Context) {
	uid := c.GetString("uid")
	date := ledger.Today()

	err := h.ledger.CancelVote(c.Request.Context(), uid, date)
	if errors.Is(err, ledger.ErrNotRecorded) {
		c.JSON(http.StatusConflict, gin.H{"error": msgCancelFailed})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgCancelFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "date": date})
}
