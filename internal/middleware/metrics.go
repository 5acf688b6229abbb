package middleware

import (
	"strconv"
	"time"

	"aiImageStudio/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// Metrics records latency and status per route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecommendLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			metrics.RecommendResponses.WithLabelValues(route, strconv.Itoa(status)).Inc()

			return err
		}
	}
}
