/*
Package notify implements the best-effort push notification gateway used when
a message's recipient has no live connection.

This file defines the Notifier interface and its implementations: an FCM
client for production and a log-only fallback for deployments without push
credentials. Push failures are logged and never alter chat delivery.
*/
package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"relaychat/internal/pkg/logx"
)

// Notification is the payload pushed to an offline recipient's device.
type Notification struct {
	Title string
	Body  string
}

// Notifier sends one push notification to a device token.
type Notifier interface {
	Push(ctx context.Context, deviceToken string, n Notification) error
}

// fcmNotifier implements Notifier against Firebase Cloud Messaging.
type fcmNotifier struct {
	client *messaging.Client
}

// NewFCMNotifier initializes an FCM-backed Notifier from a service account
// credentials file.
func NewFCMNotifier(ctx context.Context, credentialsFile string) (Notifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM messaging client: %w", err)
	}

	return &fcmNotifier{client: client}, nil
}

// Push sends the notification to the given device token with high-priority
// hints for both platforms, so the device wakes for the incoming chat.
func (f *fcmNotifier) Push(ctx context.Context, deviceToken string, n Notification) error {
	msg := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
		},
	}

	if _, err := f.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("FCM send failed: %w", err)
	}

	return nil
}

// logNotifier is the fallback Notifier used when no push credentials are
// configured. It records the would-be push and succeeds.
type logNotifier struct{}

// NewLogNotifier returns a Notifier that only logs.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Push(ctx context.Context, deviceToken string, n Notification) error {
	logx.Info("Push notification skipped (log-only notifier).",
		"device_token", deviceToken,
		"title", n.Title,
	)
	return nil
}
