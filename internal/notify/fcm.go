package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Messenger is the push provider surface the dispatcher consumes. Tests
// substitute a fake; production wires FCM.
type Messenger interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) (string, error)
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) (string, error)
	SubscribeToTopic(ctx context.Context, token, topic string) error
}

// FCM sends through Firebase Cloud Messaging using a service-account
// credential.
type FCM struct {
	client *messaging.Client
	link   string // web link attached to webpush notifications
}

// NewFCM initializes the Firebase app. With an empty credentialsFile the
// SDK falls back to application-default credentials.
func NewFCM(ctx context.Context, credentialsFile, link string) (*FCM, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}

	return &FCM{client: client, link: link}, nil
}

func (f *FCM) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) (string, error) {
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	if f.link != "" {
		msg.Webpush = &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{Link: f.link},
		}
	}
	return f.client.Send(ctx, msg)
}

func (f *FCM) SendToToken(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	return f.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
}

func (f *FCM) SubscribeToTopic(ctx context.Context, token, topic string) error {
	resp, err := f.client.SubscribeToTopic(ctx, []string{token}, topic)
	if err != nil {
		return err
	}
	if resp.FailureCount > 0 && len(resp.Errors) > 0 {
		return fmt.Errorf("topic subscribe failed: %s", resp.Errors[0].Reason)
	}
	return nil
}
