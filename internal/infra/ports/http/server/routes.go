package server

import (
	"github.com/labstack/echo/v4"

	"github.com/rolltable/rolltable/internal/infra/ports/http/handlers"
	"github.com/rolltable/rolltable/internal/infra/ports/http/middleware"
)

func New(
	roomHandler *handlers.RoomHandler,
	timeHandler *handlers.TimeHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/time", timeHandler.NowHandler)

			v1.GET("/ws", wsHandler.Handle)

			v1.GET("/rooms", roomHandler.ListRoomsHandler)
			v1.POST("/rooms", roomHandler.CreateRoomHandler)
			v1.DELETE("/rooms/:id", roomHandler.DeleteRoomHandler)
			v1.PUT("/rooms/:id/empty", roomHandler.MarkEmptyHandler)
			v1.POST("/rooms/:id/verify", roomHandler.VerifyRoomHandler)
		}
	}

	return e
}
