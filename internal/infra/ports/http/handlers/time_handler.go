package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolltable/rolltable/internal/clock"
	"github.com/rolltable/rolltable/internal/infra/ports/http/dto"
)

// TimeHandler serves the reference timestamp clients align their local
// clocks with.
type TimeHandler struct {
	clk *clock.Clock
}

func NewTimeHandler(clk *clock.Clock) *TimeHandler {
	return &TimeHandler{clk: clk}
}

func (h *TimeHandler) NowHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.TimeResponse{TS: h.clk.Now()})
}
