package models

import "time"

type UserProfile struct {
	UID      string `gorm:"primaryKey" json:"uid"`
	Nickname string `gorm:"not null" json:"nickname"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"" json:"-"` // Only set for admin-created accounts

	// Optional phone number for the SMS reminder channel
	PhoneNumber string `json:"phone_number,omitempty"`

	IsAdmin      bool   `json:"is_admin"`
	AuthProvider string `json:"auth_provider"` // "google" or "admin"

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Nickname    string `json:"nickname" binding:"required"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	IsAdmin     bool   `json:"is_admin"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}
