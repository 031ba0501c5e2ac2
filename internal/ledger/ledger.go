package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/make-it-kro/lunch-poll/backend/internal/models"
)

// ErrNotRecorded is returned when a vote transaction keeps colliding with
// concurrent writers and the retry budget runs out. No partial state is
// left behind: every attempt runs inside a single database transaction.
var ErrNotRecorded = errors.New("vote not recorded")

// errConflict aborts a transaction whose counter compare-and-swap lost a
// race; the whole read-modify-write cycle is re-run from the read step.
var errConflict = errors.New("daily poll counter conflict")

// RetryPolicy bounds how many times a colliding transaction is re-run.
type RetryPolicy struct {
	Attempts int
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 3}

// Ledger owns the per-day aggregate counters and per-user responses.
// All counter mutation goes through its transactions; nothing else may
// touch DailyPoll rows.
type Ledger struct {
	db    *gorm.DB
	retry RetryPolicy
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db, retry: DefaultRetryPolicy}
}

// NormalizeChoice maps a stored response value onto the canonical choice
// labels. Old rows encode the response as a boolean ("true"/"false");
// this is the single place that legacy shape is understood, so it can be
// removed once the old data ages out.
func NormalizeChoice(raw string) (models.Choice, bool) {
	switch raw {
	case string(models.ChoiceJoining), "true":
		return models.ChoiceJoining, true
	case string(models.ChoiceNotJoining), "false":
		return models.ChoiceNotJoining, true
	}
	return "", false
}

// RecordVote stores the user's choice for the given day and keeps the
// day's counters consistent with it: +1 to the new choice's counter and,
// when the user had already voted differently, -1 to the previous one.
// Re-voting the same choice is a no-op.
func (l *Ledger) RecordVote(ctx context.Context, userID string, choice models.Choice, date string) error {
	if !choice.Valid() {
		return fmt.Errorf("invalid choice %q", choice)
	}
	return l.withRetry(ctx, func(tx *gorm.DB) error {
		return recordVote(tx, userID, choice, date)
	})
}

// CancelVote removes the user's response for the given day and decrements
// the matching counter, clamped at zero. The decremented bucket is chosen
// from the currently persisted response, never from the caller's possibly
// stale view. A missing response is a harmless no-op.
func (l *Ledger) CancelVote(ctx context.Context, userID string, date string) error {
	return l.withRetry(ctx, func(tx *gorm.DB) error {
		return cancelVote(tx, userID, date)
	})
}

// withRetry runs fn inside a transaction, re-running it from scratch on
// counter conflicts until the retry budget is spent.
func (l *Ledger) withRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	for attempt := 0; attempt < l.retry.Attempts; attempt++ {
		err := l.db.WithContext(ctx).Transaction(fn)
		if !errors.Is(err, errConflict) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrNotRecorded, l.retry.Attempts)
}

func recordVote(tx *gorm.DB, userID string, choice models.Choice, date string) error {
	var prev *models.Choice
	var resp models.UserResponse
	err := tx.Where("user_id = ? AND date = ?", userID, date).Take(&resp).Error
	switch {
	case err == nil:
		if c, ok := NormalizeChoice(resp.Response); ok {
			prev = &c
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first vote of the day for this user
	default:
		return err
	}

	if prev != nil && *prev == choice {
		return nil // idempotent re-vote
	}

	if resp.ID == 0 {
		created := models.UserResponse{UserID: userID, Date: date, Response: string(choice)}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// another transaction created this user's response first
			return errConflict
		}
	} else {
		res := tx.Model(&models.UserResponse{}).
			Where("id = ?", resp.ID).
			Update("response", string(choice))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errConflict
		}
	}

	return adjustCounters(tx, date, choice, prev)
}

func cancelVote(tx *gorm.DB, userID string, date string) error {
	var resp models.UserResponse
	err := tx.Where("user_id = ? AND date = ?", userID, date).Take(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // nothing to cancel
	}
	if err != nil {
		return err
	}

	// The persisted choice decides which bucket is decremented; the
	// caller's belief about their previous vote may be stale.
	stored, ok := NormalizeChoice(resp.Response)

	res := tx.Delete(&models.UserResponse{}, resp.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errConflict
	}
	if !ok {
		return nil
	}

	var poll models.DailyPoll
	err = tx.Take(&poll, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	newJoining, newNotJoining := poll.Joining, poll.NotJoining
	switch stored {
	case models.ChoiceJoining:
		newJoining--
	case models.ChoiceNotJoining:
		newNotJoining--
	}
	// counters never go negative, even if the aggregate had drifted
	if newJoining < 0 {
		newJoining = 0
	}
	if newNotJoining < 0 {
		newNotJoining = 0
	}

	return casUpdate(tx, poll, newJoining, newNotJoining)
}

func adjustCounters(tx *gorm.DB, date string, choice models.Choice, prev *models.Choice) error {
	var poll models.DailyPoll
	err := tx.Take(&poll, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := models.DailyPoll{Date: date}
		switch choice {
		case models.ChoiceJoining:
			created.Joining = 1
		case models.ChoiceNotJoining:
			created.NotJoining = 1
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race to create the day's poll row
			return errConflict
		}
		return nil
	}
	if err != nil {
		return err
	}

	newJoining, newNotJoining := poll.Joining, poll.NotJoining
	switch choice {
	case models.ChoiceJoining:
		newJoining++
	case models.ChoiceNotJoining:
		newNotJoining++
	}
	if prev != nil {
		switch *prev {
		case models.ChoiceJoining:
			newJoining--
		case models.ChoiceNotJoining:
			newNotJoining--
		}
	}

	return casUpdate(tx, poll, newJoining, newNotJoining)
}

// casUpdate writes the new counter pair only if the row still holds the
// values read at the start of the transaction. A miss means a concurrent
// vote committed in between, and the caller's transaction must retry.
func casUpdate(tx *gorm.DB, read models.DailyPoll, joining, notJoining int) error {
	res := tx.Model(&models.DailyPoll{}).
		Where("date = ? AND joining = ? AND not_joining = ?", read.Date, read.Joining, read.NotJoining).
		Updates(map[string]interface{}{"joining": joining, "not_joining": notJoining})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errConflict
	}
	return nil
}

// PollFor returns the day's counters, zero-valued when no one has voted yet.
func (l *Ledger) PollFor(ctx context.Context, date string) (models.DailyPoll, error) {
	var poll models.DailyPoll
	err := l.db.WithContext(ctx).Take(&poll, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DailyPoll{Date: date}, nil
	}
	if err != nil {
		return models.DailyPoll{}, err
	}
	return poll, nil
}

// ResponseFor returns the user's normalized choice for the day, or nil
// when they have not voted.
func (l *Ledger) ResponseFor(ctx context.Context, userID string, date string) (*models.Choice, error) {
	var resp models.UserResponse
	err := l.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).Take(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	choice, ok := NormalizeChoice(resp.Response)
	if !ok {
		return nil, nil
	}
	return &choice, nil
}

// AllPolls returns every stored daily poll; the report aggregator does
// its own filtering and ordering.
func (l *Ledger) AllPolls(ctx context.Context) ([]models.DailyPoll, error) {
	var polls []models.DailyPoll
	if err := l.db.WithContext(ctx).Find(&polls).Error; err != nil {
		return nil, err
	}
	return polls, nil
}
