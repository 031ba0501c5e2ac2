// Package testutil provides shared helpers for package tests: an
// isolated in-memory database, signed auth tokens, HTTP helpers, and a
// fake push messenger.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/make-it-kro/lunch-poll/backend/internal/database"
)

// NewTestDB opens a fresh in-memory database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	// A single connection keeps the in-memory database alive and
	// serializes concurrent transactions the way a row lock would.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

type testService struct {
	db *gorm.DB
}

func (s testService) Health() map[string]string { return map[string]string{"status": "up"} }
func (s testService) GetDB() *gorm.DB           { return s.db }
func (s testService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Service wraps a test database in the database.Service interface so the
// server can be wired against it.
func Service(db *gorm.DB) database.Service {
	return testService{db: db}
}

// AuthToken signs a bearer token for uid using the JWT_SECRET in effect.
func AuthToken(t *testing.T, uid string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": uid,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

// DoRequest performs an HTTP request against the handler and returns the
// recorder. A nil body sends no payload; a non-empty token becomes a
// bearer Authorization header.
func DoRequest(t *testing.T, handler http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// DecodeBody unmarshals a recorded JSON response into out.
func DecodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// FakeMessenger records push calls for assertions.
type FakeMessenger struct {
	mu         sync.Mutex
	TopicSends []string
	TokenSends []string
	Subscribed map[string]string // token -> topic
	Err        error
}

func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{Subscribed: make(map[string]string)}
}

func (f *FakeMessenger) SendToTopic(_ context.Context, topic, _, _ string, _ map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.TopicSends = append(f.TopicSends, topic)
	return "projects/test/messages/1", nil
}

func (f *FakeMessenger) SendToToken(_ context.Context, token, _, _ string, _ map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.TokenSends = append(f.TokenSends, token)
	return "projects/test/messages/2", nil
}

func (f *FakeMessenger) SubscribeToTopic(_ context.Context, token, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Subscribed[token] = topic
	return nil
}
