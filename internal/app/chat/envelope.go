/*
Package chat contains the core logic for real-time one-to-one message relay:
the presence registry, the per-connection session loops, and the delivery hub.

This file defines the wire-level envelope types exchanged over a connection.
Every outbound frame is a tagged union distinguished by its "type" field.
*/
package chat

import "time"

// EnvelopeType is the discriminator for outbound frames.
type EnvelopeType string

const (
	// TypeMessage carries a chat payload to its recipient.
	TypeMessage EnvelopeType = "message"

	// TypeAck is the delivery receipt returned to the sender. It carries the
	// same payload as the message it acknowledges.
	TypeAck EnvelopeType = "acknowledgment"

	// TypeError reports a protocol-level failure to the client.
	TypeError EnvelopeType = "error"

	// TypeActiveUsers carries the presence snapshot after a registry mutation.
	TypeActiveUsers EnvelopeType = "active_users"
)

// MaxBodyBytes is the maximum allowed size (in bytes) for a message body.
const MaxBodyBytes = 5000

// ChatPayload is the payload of message and acknowledgment envelopes, and the
// element shape of history query responses.
type ChatPayload struct {
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Envelope is one outbound frame.
type Envelope struct {
	Type EnvelopeType `json:"type"`

	// Data holds the ChatPayload for message/acknowledgment frames and the
	// user id list for active_users frames.
	Data any `json:"data,omitempty"`

	// Error holds the failure description for error frames.
	Error string `json:"error,omitempty"`
}

// ChatRequest is the single inbound frame type: a request to relay one
// message to a recipient. Both fields are required.
type ChatRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// Validate reports whether the request names a recipient and carries a body.
// It is a pure check with no side effects.
func (r ChatRequest) Validate() bool {
	return r.Recipient != "" && r.Message != ""
}
