package middleware

import (
	"github.com/labstack/echo/v4"
)

const userIDHeader = "X-User-ID"

const userIDKey = "userID"

// Identity lifts the authenticated user ID supplied by the upstream identity
// layer into the request context. The value is trusted opaquely; this
// service never authenticates.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(userIDKey, c.Request().Header.Get(userIDHeader))
			return next(c)
		}
	}
}

func UserID(c echo.Context) string {
	if v, ok := c.Get(userIDKey).(string); ok {
		return v
	}
	return ""
}
