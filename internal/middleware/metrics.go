package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/observability"
)

// Metrics records a request counter and latency histogram per route.
// The route label uses the registered path pattern, not the raw URL, so
// cardinality stays bounded.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			observability.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			observability.HTTPLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
