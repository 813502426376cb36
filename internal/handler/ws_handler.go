/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting, verifying
the identity token, upgrading the HTTP connection to WebSocket, and initiating the client lifecycle.
Rooms are chosen later, by the client's JOIN_ROOM message.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"drawify/internal/app/board"
	"drawify/internal/pkg/errs"
	"drawify/internal/pkg/limiter"
	"drawify/internal/pkg/logx"
	"drawify/internal/pkg/resp"
)

// TokenQueryParam carries the identity token on the websocket URL.
const TokenQueryParam = "token"

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		token := r.URL.Query().Get(TokenQueryParam)
		if token == "" {
			logx.Info("WebSocket connection rejected: Missing token.", "ip", ip)
			board.RejectConnection(conn, errs.NewError(errs.ErrUnauthorized))
			return
		}

		userID, err := deps.Verifier(token)
		if err != nil {
			logx.Info("WebSocket connection rejected: Invalid token.", "ip", ip, "error", err.Error())
			board.RejectConnection(conn, errs.NewError(errs.ErrInvalidToken))
			return
		}

		client := board.NewClient(r.Context(), conn, userID, deps.Registry, deps.Store)

		go client.WritePump()

		logx.Info("WebSocket connection established", "user_id", userID, "ip", ip)

		client.ReadPump()
	}
}
