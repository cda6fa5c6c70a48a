/*
Package notify implements the best-effort push notification gateway.

This file defines the Dispatcher, which resolves the recipient's push profile
(display name and device token) and hands the notification to the Notifier.
It satisfies the delivery hub's OfflineNotifier contract.
*/
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"relaychat/internal/app/profile"
	"relaychat/internal/pkg/logx"
)

// Dispatcher routes a missed chat message to the recipient's registered device.
type Dispatcher struct {
	profiles profile.Store
	notifier Notifier

	// structured logger with Dispatcher context.
	logger zerolog.Logger
}

// NewDispatcher constructs a Dispatcher around the profile store and notifier.
func NewDispatcher(profiles profile.Store, notifier Notifier) *Dispatcher {
	dispatcherLogger := logx.Logger().With().Str("component", "Dispatcher").Logger()

	return &Dispatcher{
		profiles: profiles,
		notifier: notifier,
		logger:   dispatcherLogger,
	}
}

// NotifyOffline pushes a notification for one missed message. Every failure
// path logs and returns: push delivery is best-effort and its outcome is
// never surfaced to either chat party.
func (d *Dispatcher) NotifyOffline(ctx context.Context, sender, recipient, body string) {
	rec, err := d.profiles.Get(ctx, recipient)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			d.logger.Debug().
				Str("recipient", recipient).
				Msg("No push profile registered for offline recipient. Skipping.")
			return
		}

		d.logger.Error().Err(err).
			Str("recipient", recipient).
			Msg("Profile lookup failed. Skipping push notification.")
		return
	}

	if rec.DeviceToken == "" {
		d.logger.Debug().
			Str("recipient", recipient).
			Msg("Offline recipient has no device token. Skipping.")
		return
	}

	senderName := sender
	if senderRec, err := d.profiles.Get(ctx, sender); err == nil && senderRec.DisplayName != "" {
		senderName = senderRec.DisplayName
	}

	n := Notification{
		Title: fmt.Sprintf("New message from %s", senderName),
		Body:  body,
	}

	if err := d.notifier.Push(ctx, rec.DeviceToken, n); err != nil {
		d.logger.Error().Err(err).
			Str("recipient", recipient).
			Msg("Push notification failed.")
		return
	}

	d.logger.Info().
		Str("recipient", recipient).
		Msg("Push notification dispatched for offline recipient.")
}
