package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/model"
)

// UserID returns the authenticated user id, if JWTAuth ran.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	return id, ok && id != 0
}

// IsAdmin reports whether the authenticated user carries the ADMIN role.
func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(CtxRole).(string)
	return role == model.RoleAdmin
}

// userKey identifies the caller in rate limit keys; anonymous callers share "anon".
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
