package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rolltable/rolltable/internal/application/constant"
)

func SlogLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(
		middleware.RequestLoggerConfig{
			LogStatus:  true,
			LogURI:     true,
			LogMethod:  true,
			LogLatency: true,
			LogError:   true,

			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				level := slog.LevelInfo
				if v.Error != nil || v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				} else if v.Status >= http.StatusBadRequest {
					level = slog.LevelWarn
				}

				attrs := []slog.Attr{
					slog.Int("status", v.Status),
					slog.String("uri", v.URI),
					slog.String("method", v.Method),
					slog.Duration("latency", v.Latency),
				}

				// Handlers that resolved a room tag the request with it.
				if roomID, ok := c.Get(constant.RoomID).(string); ok && roomID != "" {
					attrs = append(attrs, slog.String(constant.RoomID, roomID))
				}

				slog.LogAttrs(
					c.Request().Context(),
					level,
					"HTTP request",
					attrs...,
				)

				return nil
			},
		},
	)
}
