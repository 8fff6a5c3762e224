package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"catalogapi/internal/token"
)

// UserIDKey is the echo context key under which RequireLogin stores the
// authenticated user's id.
const UserIDKey = "userID"

// RequireLogin validates the bearer token from the Authorization header
// (falling back to the accessToken cookie) and stores the caller's user
// id in the context. Token checks are stateless: signature and expiry
// only.
func RequireLogin(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			userID, err := token.Parse(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the id stored by RequireLogin, or 0 when the request
// is unauthenticated.
func UserID(c echo.Context) uint {
	if v, ok := c.Get(UserIDKey).(uint); ok {
		return v
	}
	return 0
}

func tokenFromRequest(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}
