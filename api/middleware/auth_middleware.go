package middleware

import (
	"net/http"
	"strings"

	"authflow/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthMiddleware struct {
	JWT        *utils.JWTManager
	CookieName string
}

// RequireSession resolves the session token from the `token` cookie, falling
// back to a bearer header, and puts the user id on the request context.
func (m AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.JWT == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		token := m.extractSessionToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		claims, err := m.JWT.ParseSessionToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		SetAuthContext(c, userID)
		return next(c)
	}
}

func (m AuthMiddleware) extractSessionToken(c echo.Context) string {
	name := m.CookieName
	if name == "" {
		name = "token"
	}
	if cookie, err := c.Cookie(name); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return extractBearerToken(c.Request())
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
