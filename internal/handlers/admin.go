package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/make-it-kro/lunch-poll/backend/internal/ledger"
	"github.com/make-it-kro/lunch-poll/backend/internal/models"
)

type AdminHandler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db, ledger: ledger.New(db)}
}

// ListUsers returns every non-admin profile joined with today's vote,
// the view the admin page renders.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.UserProfile
	if err := h.db.Where("is_admin = ?", false).Order("nickname").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	date := ledger.Today()
	var responses []models.UserResponse
	if err := h.db.Where("date = ?", date).Find(&responses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch votes"})
		return
	}

	votes := make(map[string]models.Choice, len(responses))
	for _, r := range responses {
		if choice, ok := ledger.NormalizeChoice(r.Response); ok {
			votes[r.UserID] = choice
		}
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		var vote *models.Choice
		if choice, ok := votes[u.UID]; ok {
			vote = &choice
		}
		list = append(list, gin.H{
			"uid":      u.UID,
			"nickname": u.Nickname,
			"email":    u.Email,
			"vote":     vote,
		})
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "users": list})
}

// CreateUser provisions a profile directly, with an optional password
// for accounts that cannot use Google sign-in.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input models.CreateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.UserProfile
	if err := h.db.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	user := models.UserProfile{
		UID:          uuid.NewString(),
		Nickname:     input.Nickname,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		IsAdmin:      input.IsAdmin,
		AuthProvider: "admin",
	}

	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.Password = string(hashed)
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// OverrideVote records a vote on a user's behalf, through the same
// ledger transaction ordinary votes use.
func (h *AdminHandler) OverrideVote(c *gin.Context) {
	uid := c.Param("uid")

	var user models.UserProfile
	if err := h.db.First(&user, "uid = ?", uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Choice.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "choice must be \"joining\" or \"notJoining\""})
		return
	}

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

	c.JSON(http.StatusOK, gin.H{"ok": true, "uid": uid, "date": date})
}

// ClearVote withdraws a user's vote for today.
func (h *AdminHandler) ClearVote(c *gin.Context) {
	uid := c.Param("uid")

	var user models.UserProfile
	if err := h.db.First(&user, "uid = ?", uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

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

	c.JSON(http.StatusOK, gin.H{"ok": true, "uid": uid, "date": date})
}
