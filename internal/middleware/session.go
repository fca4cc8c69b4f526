package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/session"
)

// CtxSessionID is where BookingSession stores the draft session id.
const CtxSessionID = "booking_session"

// BookingSession resolves the booking draft session from the header or the
// cookie, issuing a new id when neither carries a valid one.  The id is
// echoed back in both so that API clients and browsers can keep it.
func BookingSession(cfg config.SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(cfg.Header)
			if !session.ValidID(id) {
				id = ""
				if ck, err := c.Cookie(cfg.CookieName); err == nil && session.ValidID(ck.Value) {
					id = ck.Value
				}
			}
			if id == "" {
				id = session.NewID()
			}
			c.Set(CtxSessionID, id)
			c.Response().Header().Set(cfg.Header, id)
			c.SetCookie(&http.Cookie{
				Name:     cfg.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			return next(c)
		}
	}
}

// SessionID returns the id stored by BookingSession.
func SessionID(c echo.Context) string {
	id, _ := c.Get(CtxSessionID).(string)
	return id
}
