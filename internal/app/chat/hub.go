/*
Package chat contains the core logic for real-time one-to-one message relay.

This file defines the Hub, which sequences the per-message delivery flow:
persist, attempt live delivery, fall back to push notification, acknowledge
the sender, and broadcast presence changes after every registry mutation.
*/
package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"relaychat/internal/app/message"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
)

const (
	// upper bound for the durable store write on the delivery path.
	persistTimeout = 5 * time.Second

	// upper bound for the asynchronous push notification dispatch.
	notifyTimeout = 10 * time.Second
)

// OfflineNotifier dispatches a best-effort push notification for a message
// whose recipient has no live connection. Implementations log their own
// failures; nothing is surfaced to either chat party.
type OfflineNotifier interface {
	NotifyOffline(ctx context.Context, sender, recipient, body string)
}

// Hub owns the presence registry and coordinates message delivery. It is
// constructed once at process start and shared by every connection session.
type Hub struct {
	registry *Registry
	store    message.Store
	notifier OfflineNotifier

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub around the given message store and notifier.
// The notifier may be nil, in which case offline recipients are logged and skipped.
func NewHub(store message.Store, notifier OfflineNotifier) *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	return &Hub{
		registry: NewRegistry(),
		store:    store,
		notifier: notifier,
		logger:   hubLogger,
	}
}

// Registry exposes the presence registry for read access (snapshots, lookups).
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Register installs c as the live connection for its user id. If the same
// user id is already connected the previous connection is kicked and
// replaced; last connection wins. A presence broadcast follows.
func (h *Hub) Register(c *Client) {
	prev := h.registry.Register(c.userID, c)
	if prev != nil {
		h.logger.Warn().
			Str("client_id", c.userID).
			Msg("Client ID already connected. Closing old connection for replacement.")

		prev.Kick("Session replaced by new connection. Check other tabs.")
	}

	h.logger.Info().
		Str("client_id", c.userID).
		Int("total_users", h.registry.Len()).
		Msg("Client connected.")

	h.BroadcastPresence()
}

// Unregister removes c from the registry if it is still the live connection
// for its user id, closes its send queue, and broadcasts presence. Stale
// connections (already replaced) are ignored.
func (h *Hub) Unregister(c *Client) {
	if !h.registry.RemoveClient(c) {
		h.logger.Info().
			Str("stale_client_id", c.userID).
			Msg("Ignoring unregister for stale connection.")
		return
	}

	c.closeSend()

	h.logger.Info().
		Str("client_id", c.userID).
		Int("total_users", h.registry.Len()).
		Msg("Client disconnected.")

	h.BroadcastPresence()
}

// Deliver relays one chat message from sender to recipient.
//
// The flow is fixed: validate, persist unconditionally, attempt live
// delivery, fall back to push notification, acknowledge the sender.
// Persistence precedes delivery so history is never lost on a delivery
// failure; live delivery is advisory. The returned error is non-nil only for
// validation and persistence failures, which the session reports to the
// sender; everything else degrades silently with best-effort fallback.
func (h *Hub) Deliver(sender, recipient, body string) *errs.CustomError {
	req := ChatRequest{Recipient: recipient, Message: body}
	if !req.Validate() {
		return errs.NewError(errs.ErrMessageInvalid)
	}

	if len(body) > MaxBodyBytes {
		return errs.NewError(errs.ErrMessageTooLong)
	}

	rec := message.NewRecord(sender, recipient, body)

	// The write is bounded by its own timeout, not the session lifetime, so
	// a disconnecting sender cannot abort an in-flight persist.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := h.store.Append(ctx, rec); err != nil {
		h.logger.Error().Err(err).
			Str("sender", sender).
			Str("recipient", recipient).
			Msg("Failed to persist message. Delivery aborted.")
		return errs.NewError(errs.ErrPersistenceFailed)
	}

	payload := ChatPayload{
		Sender:    rec.Sender,
		Recipient: rec.Recipient,
		Message:   rec.Body,
		Timestamp: rec.CreatedAt,
	}

	offline := true
	if rc := h.registry.Lookup(recipient); rc != nil {
		if err := rc.enqueue(Envelope{Type: TypeMessage, Data: payload}); err != nil {
			h.logger.Warn().Err(err).
				Str("recipient", recipient).
				Msg("Live delivery failed. Evicting recipient and falling back to push.")
			h.evict(rc)
		} else {
			offline = false
		}
	}

	if offline {
		h.dispatchNotification(sender, recipient, body)
	}

	// The sender may have disconnected mid-flow; that is not an error.
	if sc := h.registry.Lookup(sender); sc != nil {
		if err := sc.enqueue(Envelope{Type: TypeAck, Data: payload}); err != nil {
			h.logger.Warn().Err(err).
				Str("sender", sender).
				Msg("Failed to queue acknowledgment. Evicting sender.")
			h.evict(sc)
		}
	}

	return nil
}

// dispatchNotification hands the message to the notification gateway on a
// separate goroutine. The acknowledgment path never waits on it.
func (h *Hub) dispatchNotification(sender, recipient, body string) {
	if h.notifier == nil {
		h.logger.Debug().
			Str("recipient", recipient).
			Msg("No notifier configured. Skipping offline notification.")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		h.notifier.NotifyOffline(ctx, sender, recipient, body)
	}()
}

// evict removes a client whose send queue rejected an envelope, closing it
// and broadcasting the shrunken presence set.
func (h *Hub) evict(c *Client) {
	if !h.registry.RemoveClient(c) {
		return
	}

	c.closeSend()
	h.BroadcastPresence()
}

// BroadcastPresence sends the current reachable-set snapshot as an
// active_users envelope to every registered connection. A failure sending to
// an individual recipient removes that recipient and re-broadcasts to the
// remainder; it never aborts the broadcast for other recipients. Each pass
// only repeats after removing at least one client, so the cascade is bounded.
func (h *Hub) BroadcastPresence() {
	for {
		snapshot := h.registry.Snapshot()
		clients := h.registry.All()

		env := Envelope{Type: TypeActiveUsers, Data: snapshot}

		var failed []*Client
		for _, c := range clients {
			if err := c.enqueue(env); err != nil {
				failed = append(failed, c)
			}
		}

		if len(failed) == 0 {
			return
		}

		evicted := false
		for _, c := range failed {
			if h.registry.RemoveClient(c) {
				h.logger.Warn().
					Str("client_id", c.userID).
					Msg("Client unreachable during presence broadcast. Evicting.")
				c.closeSend()
				evicted = true
			}
		}

		if !evicted {
			return
		}
	}
}
