package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolltable/rolltable/internal/application/constant"
	"github.com/rolltable/rolltable/internal/domain"
	"github.com/rolltable/rolltable/internal/infra/ports/http/dto"
	"github.com/rolltable/rolltable/internal/session"
	"github.com/rolltable/rolltable/internal/usecase"
)

type RoomHandler struct {
	registry  usecase.RegistryUsecase
	jwtSecret []byte
}

func NewRoomHandler(registry usecase.RegistryUsecase, jwtSecret string) *RoomHandler {
	return &RoomHandler{
		registry:  registry,
		jwtSecret: []byte(jwtSecret),
	}
}

func (h *RoomHandler) CreateRoomHandler(c echo.Context) error {
	var req dto.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	id, err := h.registry.Create(c.Request().Context(), req.Name, req.Password)
	if err != nil {
		slog.Error("create room", slog.Any(constant.Error, err))
		return writeDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.CreateRoomResponse{ID: id})
}

func (h *RoomHandler) ListRoomsHandler(c echo.Context) error {
	rooms, err := h.registry.List(c.Request().Context())
	if err != nil {
		slog.Error("list rooms", slog.Any(constant.Error, err))
		return writeDomainError(c, err)
	}

	resp := dto.ListRoomsResponse{
		Rooms: make([]dto.RoomResponse, 0, len(rooms)),
	}
	for _, room := range rooms {
		resp.Rooms = append(resp.Rooms, dto.NewRoomResponseFromModel(room))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *RoomHandler) DeleteRoomHandler(c echo.Context) error {
	if err := h.registry.Delete(c.Request().Context(), roomParam(c)); err != nil {
		slog.Error("delete room", slog.Any(constant.Error, err))
		return writeDomainError(c, err)
	}

	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *RoomHandler) MarkEmptyHandler(c echo.Context) error {
	var req dto.MarkEmptyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.registry.MarkEmpty(c.Request().Context(), roomParam(c), req.Empty); err != nil {
		slog.Error("mark room empty", slog.Any(constant.Error, err))
		return writeDomainError(c, err)
	}

	return c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

func (h *RoomHandler) VerifyRoomHandler(c echo.Context) error {
	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	id := roomParam(c)

	ok, err := h.registry.Verify(c.Request().Context(), id, req.Password)
	if err != nil {
		slog.Error("verify room password", slog.Any(constant.Error, err))
		return writeDomainError(c, err)
	}

	resp := dto.VerifyResponse{OK: ok}
	if ok {
		token, err := session.NewRoomToken(h.jwtSecret, id)
		if err != nil {
			slog.Error("issue room token", slog.Any(constant.Error, err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create token"})
		}
		resp.Token = token
	}

	return c.JSON(http.StatusOK, resp)
}

// roomParam reads the :id path parameter and tags the request with it so the
// request logger can attach it.
func roomParam(c echo.Context) string {
	id := c.Param("id")
	c.Set(constant.RoomID, id)
	return id
}

// writeDomainError maps the error taxonomy to HTTP statuses.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case domain.IsValidation(err):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": "registry busy, try again"})
	case errors.Is(err, domain.ErrUpstream):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "storage unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
