package middleware

import (
	"aiImageStudio/business/recommend"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-ID"

// TraceID reuses the caller's X-Request-ID or mints a new one, echoes it in
// the response and stores it on the request context for logging.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			tid := req.Header.Get(HeaderRequestID)
			if tid == "" || len(tid) > 128 {
				tid = uuid.NewString()
			}

			c.Response().Header().Set(HeaderRequestID, tid)
			c.SetRequest(req.WithContext(recommend.ContextWithTraceID(req.Context(), tid)))

			return next(c)
		}
	}
}
