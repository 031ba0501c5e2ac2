package handlers

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/make-it-kro/lunch-poll/backend/internal/models"
)

func TestBootstrapAdmin(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "boss@example.kr, CEO@example.kr")

	assert.True(t, bootstrapAdmin("관리자", "anyone@example.kr"), "historical admin nickname")
	assert.True(t, bootstrapAdmin("사장", "boss@example.kr"))
	assert.True(t, bootstrapAdmin("대표", "ceo@example.kr"), "email match is case-insensitive")
	assert.False(t, bootstrapAdmin("지현", "jihyun@example.kr"))
}

func TestBootstrapAdminWithoutAllowlist(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "")

	assert.True(t, bootstrapAdmin("관리자", "x@example.kr"))
	assert.False(t, bootstrapAdmin("지현", "x@example.kr"))
}

func TestNicknameFromEmail(t *testing.T) {
	assert.Equal(t, "jihyun", nicknameFromEmail("jihyun@example.kr"))
	assert.Equal(t, "no-at-sign", nicknameFromEmail("no-at-sign"))
}

func TestSignTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := models.UserProfile{UID: "u1", Nickname: "지현", Email: "u1@example.kr"}
	signed, err := signToken(user)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "u1", claims["uid"])
	assert.Equal(t, "지현", claims["nickname"])
}
