/*
Package chat contains the core logic for real-time one-to-one message relay.

This file defines the Client struct, representing one active WebSocket connection.
It manages the session lifecycle, the message communication loops (ReadPump and
WritePump), and hands inbound chat requests to the Hub for delivery.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"relaychat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the per-client outbound send queue.
	sendQueueSize = 256

	// WsCloseCodeSessionReplaced is a custom WebSocket Close Code (4000-4999 range)
	// used to signal the client that the session was replaced by a new connection.
	WsCloseCodeSessionReplaced = 4001
)

// wire is the subset of *websocket.Conn the session uses. Delivery and
// broadcast never touch it directly; only the pump loops do.
type wire interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client represents one active connection and the user identifier it serves.
// The Registry entry for the user id owns the client exclusively once registered.
type Client struct {
	// the delivery hub this client belongs to.
	hub *Hub

	// underlying WebSocket connection.
	conn wire

	// user identifier taken from the connection path.
	userID string

	// a buffered channel used to queue envelopes waiting to be sent to the client.
	send chan []byte

	// mu guards the send queue lifecycle. enqueue and closeSend run on
	// different goroutines (delivery, broadcast, session cleanup, kick), so
	// closing must be observable before any later queue write is attempted.
	mu     sync.Mutex
	closed bool

	// closeFrame, when set before the queue closes, is the close frame
	// WritePump reports instead of a plain close message.
	closeFrame []byte

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(hub *Hub, conn wire, userID string) *Client {
	clientLogger := logx.Logger().With().
		Str("client_id", userID).
		Logger()

	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		logger: clientLogger,
	}
}

// UserID returns the user identifier the connection is keyed by.
func (c *Client) UserID() string {
	return c.userID
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), frame decoding, and performs cleanup upon
// connection closure. Per-connection frames are processed in receipt order.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInboundFrame(messageBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's ReadPump terminates.
// In-flight deliveries triggered by this session have already returned; the
// session only unregisters once its receive loop is done.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame decodes one raw inbound frame and hands it to the Hub.
// Malformed frames are reported back to the client and are not fatal to the session.
func (c *Client) processInboundFrame(messageBytes []byte) {
	var req ChatRequest
	if err := json.Unmarshal(messageBytes, &req); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		c.SendError("Invalid JSON format")
		return
	}

	if deliverErr := c.hub.Deliver(c.userID, req.Recipient, req.Message); deliverErr != nil {
		c.SendError(deliverErr.Message)
	}
}

// WritePump handles writing envelopes from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage handles envelopes pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, c.closeFramePayload()); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue marshals the envelope and attempts to queue it for the client.
// The queue write never blocks; a full or closed queue is a send failure and
// the caller decides whether to evict the client.
func (c *Client) enqueue(env Envelope) error {
	messageBytes, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling envelope for client")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("client send queue closed")
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping envelope")
		return fmt.Errorf("client send queue full")
	}
}

// SendError queues a TypeError envelope for the client. Failures to queue are
// logged only; an error report must never tear down the session it reports to.
func (c *Client) SendError(message string) {
	env := Envelope{
		Type:  TypeError,
		Error: message,
	}

	if err := c.enqueue(env); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue error envelope")
	}
}

// closeSend closes the outbound queue, which drives WritePump to drain,
// send a close frame, and exit. Safe to call more than once, concurrently
// with enqueue.
func (c *Client) closeSend() {
	c.closeWithFrame(nil)
}

// closeWithFrame closes the outbound queue and records the close frame
// WritePump should report, if any. The first close wins.
func (c *Client) closeWithFrame(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.closeFrame = frame
	close(c.send)
}

// closeFramePayload returns the recorded close frame, or nil for a plain close.
func (c *Client) closeFramePayload() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeFrame
}

// Kick closes the client's session with a custom WebSocket Close Frame
// (Code 4001) indicating that the session was replaced. The frame is
// delivered by WritePump after the queued envelopes drain, so the replaced
// session's connection only ever has one writer.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionReplaced).
		Str("reason", reason).
		Msg("Closing connection for session replacement.")

	c.closeWithFrame(websocket.FormatCloseMessage(
		WsCloseCodeSessionReplaced,
		reason,
	))
}
