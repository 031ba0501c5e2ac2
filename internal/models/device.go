package models

import "time"

// DeviceToken records an FCM registration token so re-subscriptions and
// test pushes can be audited. The topic subscription itself lives in FCM.
type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"unique;not null" json:"token"`
	UserID    string    `gorm:"index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SubscribeRequest struct {
	Token string `json:"token" binding:"required"`
}
