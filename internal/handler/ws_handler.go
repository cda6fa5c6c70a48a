/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting, validating
the user identifier, upgrading the HTTP connection to WebSocket, and initiating the session lifecycle.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"relaychat/internal/app/chat"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/limiter"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// The user identifier is taken from the path; the last connection for an identifier wins.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			rateLimitErr := errs.NewError(errs.ErrRateLimitExceeded)
			resp.RespondError(w, r, rateLimitErr)
			return
		}

		userID := chi.URLParam(r, "user_id")
		if userID == "" {
			logx.Warn("WebSocket request rejected: Missing user id")
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, userID)

		go client.WritePump()

		logx.Info("WebSocket connection established", "client_id", userID)

		deps.Hub.Register(client)

		client.ReadPump()
	}
}
