// Package notify fans the daily lunch reminder out to subscribers: an
// FCM topic broadcast for everyone, plus SMS for users who registered a
// phone number.
package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/make-it-kro/lunch-poll/backend/internal/models"
)

// Reminder copy, unchanged from day one.
const (
	ReminderTitle = "🍽️ 점심 투표 시간입니다"
	ReminderBody  = "오늘 점심 같이 드시나요?"

	testTitle = "🧪 FCM 테스트"
	testBody  = "지금 바로 알림이 오면 성공입니다"
)

// ErrAlreadySent means the reminder for this date was already broadcast
// by an earlier cron invocation.
var ErrAlreadySent = errors.New("reminder already sent for this date")

type Config struct {
	Topic  string // FCM topic, e.g. "lunch-vote"
	AppURL string // link opened when the notification is clicked
	SMS    SMSSender
	Redis  *redis.Client // optional once-per-date dedupe
}

type Dispatcher struct {
	db  *gorm.DB
	fcm Messenger
	cfg Config
}

func NewDispatcher(db *gorm.DB, fcm Messenger, cfg Config) *Dispatcher {
	if cfg.Topic == "" {
		cfg.Topic = "lunch-vote"
	}
	return &Dispatcher{db: db, fcm: fcm, cfg: cfg}
}

// BroadcastLunchReminder sends the daily reminder for the given poll
// date. When redis is configured, at most one broadcast goes out per
// date even if the cron fires twice; a redis outage does not block the
// reminder.
func (d *Dispatcher) BroadcastLunchReminder(ctx context.Context, date string) (string, error) {
	if d.cfg.Redis != nil {
		acquired, err := d.cfg.Redis.SetNX(ctx, "lunch-notify:"+date, "1", 24*time.Hour).Result()
		if err != nil {
			log.Printf("notify: redis dedupe unavailable: %v", err)
		} else if !acquired {
			return "", ErrAlreadySent
		}
	}

	data := map[string]string{
		"type": "LUNCH_VOTE",
		"date": date,
	}
	if d.cfg.AppURL != "" {
		data["url"] = d.cfg.AppURL
	}

	messageID, err := d.fcm.SendToTopic(ctx, d.cfg.Topic, ReminderTitle, ReminderBody, data)
	if err != nil {
		return "", err
	}

	if d.cfg.SMS != nil {
		d.smsFanout()
	}

	return messageID, nil
}

// smsFanout is best-effort: a failed SMS never fails the broadcast.
func (d *Dispatcher) smsFanout() {
	var users []models.UserProfile
	if err := d.db.Where("phone_number <> ''").Find(&users).Error; err != nil {
		log.Printf("notify: sms recipient query failed: %v", err)
		return
	}
	for _, u := range users {
		if err := d.cfg.SMS.Send(u.PhoneNumber, ReminderTitle+" "+ReminderBody); err != nil {
			log.Printf("notify: sms to %s failed: %v", u.UID, err)
		}
	}
}

// Register stores the device token and subscribes it to the reminder
// topic. Re-registering an existing token just reassigns its owner.
func (d *Dispatcher) Register(ctx context.Context, userID, token string) error {
	device := models.DeviceToken{Token: token, UserID: userID}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"user_id": userID}),
	}).Create(&device).Error
	if err != nil {
		return err
	}

	return d.fcm.SubscribeToTopic(ctx, token, d.cfg.Topic)
}

// SendTest pushes directly to a single device token.
func (d *Dispatcher) SendTest(ctx context.Context, token string) (string, error) {
	return d.fcm.SendToToken(ctx, token, testTitle, testBody, map[string]string{"type": "TEST"})
}
