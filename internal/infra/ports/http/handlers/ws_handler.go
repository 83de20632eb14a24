package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/rolltable/rolltable/internal/application/config"
	"github.com/rolltable/rolltable/internal/application/constant"
	"github.com/rolltable/rolltable/internal/session"
	"github.com/rolltable/rolltable/internal/usecase"
)

const (
	defaultReadDeadline = 60 * time.Second
	defaultPingInterval = 30 * time.Second
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	jwtSecret   []byte
	initializer usecase.InitUsecase
	hub         *session.Hub

	readDeadline time.Duration
	pingInterval time.Duration
}

func NewWebSocketHandler(cfg *config.Config, initializer usecase.InitUsecase, hub *session.Hub) *WebSocketHandler {
	return NewWebSocketHandlerWithTimings(cfg, initializer, hub, defaultReadDeadline, defaultPingInterval)
}

// NewWebSocketHandlerWithTimings exists so tests can shrink the keepalive
// cycle; the ping interval must stay below the read deadline.
func NewWebSocketHandlerWithTimings(cfg *config.Config, initializer usecase.InitUsecase, hub *session.Hub, readDeadline, pingInterval time.Duration) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		jwtSecret:    []byte(cfg.JWTSecret),
		initializer:  initializer,
		hub:          hub,
		readDeadline: readDeadline,
		pingInterval: pingInterval,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	roomID, err := session.ParseRoomToken(h.jwtSecret, c.QueryParam("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
	}
	c.Set(constant.RoomID, roomID)

	// The client may not interact until the room document carries every
	// required field.
	if err := h.initializer.EnsureReady(c.Request().Context(), roomID); err != nil {
		slog.Error("initialize room document",
			slog.String(constant.RoomID, roomID),
			slog.Any(constant.Error, err),
		)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "room document unavailable"})
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("WebSocket upgrade error", slog.Any(constant.Error, err))
		return err
	}
	defer ws.Close()

	client := session.NewClient(uuid.NewString(), roomID, ws)

	h.hub.Join(c.Request().Context(), client)
	defer h.hub.Leave(c.Request().Context(), client)

	if err := ws.SetReadDeadline(time.Now().Add(h.readDeadline)); err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.readDeadline))
	})

	// Keepalive: without pings an idle client never pongs, the read
	// deadline expires and an occupied room is mistaken for empty.
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := client.Ping(); err != nil {
					slog.Error("ping failed", slog.Any(constant.Error, err))
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read error", slog.Any(constant.Error, err))
			}
			return nil
		}

		var msg session.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("malformed client message", slog.Any(constant.Error, err))
			continue
		}

		h.hub.Dispatch(client, msg)
	}
}
