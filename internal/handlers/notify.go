package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/make-it-kro/lunch-poll/backend/internal/ledger"
	"github.com/make-it-kro/lunch-poll/backend/internal/models"
	"github.com/make-it-kro/lunch-poll/backend/internal/notify"
)

type NotifyHandler struct {
	dispatcher *notify.Dispatcher
}

func NewNotifyHandler(dispatcher *notify.Dispatcher) *NotifyHandler {
	return &NotifyHandler{dispatcher: dispatcher}
}

// Subscribe registers the caller's FCM token for the reminder topic.
func (h *NotifyHandler) Subscribe(c *gin.Context) {
	var input models.SubscribeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "FCM token is required"})
		return
	}

	if err := h.dispatcher.Register(c.Request.Context(), c.GetString("uid"), input.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Failed to subscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Subscribed to lunch-vote topic"})
}

// TestPush sends a notification straight to one device token.
func (h *NotifyHandler) TestPush(c *gin.Context) {
	var input models.SubscribeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token missing"})
		return
	}

	result, err := h.dispatcher.SendTest(c.Request.Context(), input.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send test notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// CronNotify triggers the daily reminder broadcast. The shared-secret
// check happens in middleware before this runs.
func (h *NotifyHandler) CronNotify(c *gin.Context) {
	date := ledger.Today()

	messageID, err := h.dispatcher.BroadcastLunchReminder(c.Request.Context(), date)
	if errors.Is(err, notify.ErrAlreadySent) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": true, "date": date})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to send notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "messageId": messageID, "date": date})
}
