package notify

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by every push operation when the service
// runs without a messaging credential.
var ErrNotConfigured = errors.New("push provider not configured")

// Disabled stands in for FCM when no credential is supplied; voting and
// reporting keep working, push endpoints fail cleanly.
type Disabled struct{}

func (Disabled) SendToTopic(context.Context, string, string, string, map[string]string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) SendToToken(context.Context, string, string, string, map[string]string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) SubscribeToTopic(context.Context, string, string) error {
	return ErrNotConfigured
}
