package models

import "time"

// Choice is a user's answer to the daily lunch poll.
type Choice string

const (
	ChoiceJoining    Choice = "joining"
	ChoiceNotJoining Choice = "notJoining"
)

// Valid reports whether c is one of the two canonical choice labels.
func (c Choice) Valid() bool {
	return c == ChoiceJoining || c == ChoiceNotJoining
}

// DailyPoll holds the aggregate counters for one calendar day.
// Created lazily on the first vote of the day and never deleted;
// both counters stay >= 0 and their sum equals the number of stored
// responses for that day.
type DailyPoll struct {
	Date       string    `gorm:"primaryKey" json:"date"` // YYYY-MM-DD
	Joining    int       `gorm:"not null;default:0" json:"joining"`
	NotJoining int       `gorm:"not null;default:0" json:"notJoining"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserResponse is one user's recorded choice for one day. Response may
// still hold the legacy boolean encoding ("true"/"false") for old rows;
// read paths normalize it before comparison.
type UserResponse struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_user_date" json:"user_id"`
	Date      string    `gorm:"not null;uniqueIndex:idx_user_date" json:"date"`
	Response  string    `gorm:"not null" json:"response"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteRequest struct {
	Choice Choice `json:"choice" binding:"required"`
}

type TodayPollResponse struct {
	Date       string  `json:"date"`
	Joining    int     `json:"joining"`
	NotJoining int     `json:"notJoining"`
	MyChoice   *Choice `json:"myChoice"`
}
