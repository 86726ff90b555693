// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"larder/internal/middleware"
	"larder/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsTicketTTL = 30 * time.Second

// IssueWSTicket handles POST /api/ws/ticket.
// Browsers cannot set an Authorization header on a WebSocket handshake, so
// authenticated clients trade their JWT for a short-lived single-use ticket.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("ticket store unavailable")))
	}

	ticket := uuid.New().String()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(c.Context(), key,
		strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// FeedAuth resolves optional identity for the feed socket. A valid ticket
// attaches the user ID; no ticket means an anonymous watcher. A presented but
// invalid ticket is rejected so clients notice expiry instead of silently
// degrading to anonymous.
func (s *Server) FeedAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		ticket := c.Query("ticket")
		if ticket == "" {
			return c.Next()
		}
		if s.redis == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		key := fmt.Sprintf("ws_ticket:%s", ticket)
		userIDStr, err := s.redis.Get(c.Context(), key).Result()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}
		// Delete ticket immediately (single-use)
		s.redis.Del(c.Context(), key)

		userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
		if parseErr != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		c.Locals("userID", uint(userID))
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// WebsocketFeedHandler handles WebSocket connections for the live recipe feed.
func (s *Server) WebsocketFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		// Anonymous watchers connect with userID 0.
		var userID uint
		if v := conn.Locals("userID"); v != nil {
			userID = v.(uint)
		}

		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"feed unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket Feed: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		// ReadPump blocks until the client disconnects; the feed is one-way
		// so inbound frames only serve as keepalive.
		client.ReadPump()
	})
}
