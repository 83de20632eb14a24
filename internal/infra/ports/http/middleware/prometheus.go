package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rolltable/rolltable/internal/application/metric"
)

func PrometheusMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if status == 0 {
				status = 200
			}
			if err != nil && status < 400 {
				status = 500
			}

			metric.RecordHTTPRequest(c.Request().Method, c.Path(), status, time.Since(start))

			return err
		}
	}
}
