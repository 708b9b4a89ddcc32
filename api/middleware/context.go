package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const contextUserIDKey = "auth_user_id"

func SetAuthContext(c echo.Context, userID uuid.UUID) {
	c.Set(contextUserIDKey, userID)
}

func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(contextUserIDKey)
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
