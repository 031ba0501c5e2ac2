package handlers

import (
	"gorm.io/gorm"

	"github.com/make-it-kro/lunch-poll/backend/internal/notify"
)

// Handler combines all handler types
type Handler struct {
	Auth   *AuthHandler
	Vote   *VoteHandler
	Report *ReportHandler
	Admin  *AdminHandler
	Notify *NotifyHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, dispatcher *notify.Dispatcher) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(db),
		Vote:   NewVoteHandler(db),
		Report: NewReportHandler(db),
		Admin:  NewAdminHandler(db),
		Notify: NewNotifyHandler(dispatcher),
	}
}
