package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/make-it-kro/lunch-poll/backend/internal/models"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// GoogleUserInfo represents user data from Google OAuth
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified,string"`
	Picture       string `json:"picture"`
	Name          string `json:"name"`
}

// verifyGoogleIDToken verifies the Google ID token and returns user info
func verifyGoogleIDToken(idToken string) (*GoogleUserInfo, error) {
	resp, err := http.Get(
		"https://oauth2.googleapis.com/tokeninfo?id_token=" + idToken,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid google token")
	}

	var user GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	if !user.EmailVerified {
		return nil, fmt.Errorf("email not verified")
	}

	return &user, nil
}

// bootstrapAdmin decides whether a first-time profile starts out as
// admin: the historical "관리자" display name, or an email listed in
// ADMIN_EMAILS. Thereafter the flag is only mutable by admin action.
func bootstrapAdmin(nickname, email string) bool {
	if nickname == "관리자" {
		return true
	}
	for _, e := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if e = strings.TrimSpace(e); e != "" && strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func signToken(user models.UserProfile) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":      user.UID,
		"nickname": user.Nickname,
		"email":    user.Email,
		"exp":      time.Now().Add(72 * time.Hour).Unix(), // 72 hours
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// GoogleLogin handles Google sign-in; the profile is created on first
// successful sign-in and read-only from the voting flow afterwards.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var input models.GoogleLoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	googleUser, err := verifyGoogleIDToken(input.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
		return
	}

	var user models.UserProfile
	result := h.db.First(&user, "uid = ?", googleUser.Sub)

	if result.Error == gorm.ErrRecordNotFound {
		nickname := googleUser.Name
		if nickname == "" {
			nickname = nicknameFromEmail(googleUser.Email)
		}

		user = models.UserProfile{
			UID:          googleUser.Sub,
			Nickname:     nickname,
			Email:        googleUser.Email,
			IsAdmin:      bootstrapAdmin(nickname, googleUser.Email),
			AuthProvider: "google",
		}

		if err := h.db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
	} else if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	tokenString, err := signToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Token: tokenString, User: user})
}

// Login handles password login for admin-created accounts
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.UserProfile
	if err := h.db.Where("email = ? AND auth_provider = ?", input.Email, "admin").First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := signToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Token: tokenString, User: user})
}

// GetMe returns the current authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	uid := c.GetString("uid")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.UserProfile
	if err := h.db.First(&user, "uid = ?", uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func nicknameFromEmail(email string) string {
	for i, r := range email {
		if r == '@' {
			return email[:i]
		}
	}
	return email
}
