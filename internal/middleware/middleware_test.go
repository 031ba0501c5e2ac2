package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/make-it-kro/lunch-poll/backend/internal/middleware"
	"github.com/make-it-kro/lunch-poll/backend/internal/models"
	"github.com/make-it-kro/lunch-poll/backend/internal/testutil"
)

func protectedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString("uid")})
	})
	return r
}

func signWith(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := protectedRouter(t)

	rec := testutil.DoRequest(t, r, http.MethodGet, "/protected", nil, testutil.AuthToken(t, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		UID string `json:"uid"`
	}
	testutil.DecodeBody(t, rec, &body)
	assert.Equal(t, "u1", body.UID)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := protectedRouter(t)

	rec := testutil.DoRequest(t, r, http.MethodGet, "/protected", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := protectedRouter(t)

	expired := signWith(t, "test-secret", jwt.MapClaims{
		"uid": "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	rec := testutil.DoRequest(t, r, http.MethodGet, "/protected", nil, expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := protectedRouter(t)

	forged := signWith(t, "other-secret", jwt.MapClaims{
		"uid": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	rec := testutil.DoRequest(t, r, http.MethodGet, "/protected", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsTokenWithoutUID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := protectedRouter(t)

	anonymous := signWith(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	rec := testutil.DoRequest(t, r, http.MethodGet, "/protected", nil, anonymous)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)

	require.NoError(t, db.Create(&models.UserProfile{UID: "boss", Nickname: "관리자", Email: "boss@x.kr", IsAdmin: true}).Error)
	require.NoError(t, db.Create(&models.UserProfile{UID: "pleb", Nickname: "평직원", Email: "pleb@x.kr"}).Error)

	r := gin.New()
	r.GET("/admin", middleware.AuthMiddleware(), middleware.AdminRequired(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := testutil.DoRequest(t, r, http.MethodGet, "/admin", nil, testutil.AuthToken(t, "boss"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.DoRequest(t, r, http.MethodGet, "/admin", nil, testutil.AuthToken(t, "pleb"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// token for a uid with no stored profile
	rec = testutil.DoRequest(t, r, http.MethodGet, "/admin", nil, testutil.AuthToken(t, "ghost"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCronAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/cron", middleware.CronAuth("s3cret"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := testutil.DoRequest(t, r, http.MethodPost, "/cron", nil, "s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.DoRequest(t, r, http.MethodPost, "/cron", nil, "nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// an unset secret disables the endpoint outright
	disabled := gin.New()
	disabled.POST("/cron", middleware.CronAuth(""), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	rec = testutil.DoRequest(t, disabled, http.MethodPost, "/cron", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
