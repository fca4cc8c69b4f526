package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/model"
)

// RegisterBooking registers the booking wizard under /v1/booking and the
// customer's booking reads.  All routes require a valid JWT with the CUSTOMER
// or ADMIN role; the wizard routes also carry the booking session.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, c *handler.CatalogHandler, jwtSecret string, sess config.SessionConfig) {
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	}

	g := e.Group("/v1/booking", append(auth, middleware.BookingSession(sess))...)
	g.GET("/initiate", b.Initiate)
	g.POST("/check-date", b.CheckDate)
	g.POST("/check-availability", b.CheckAvailability)
	g.GET("/packages", c.ListPackages)
	g.GET("/packages/:id/menus", c.ListMenus)
	g.POST("/calculate-fare", b.CalculateFare)
	g.GET("/draft", b.Draft)
	g.POST("/store", b.Store)
	g.POST("/send-confirmation", b.SendConfirmation)

	r := e.Group("/v1", auth...)
	r.GET("/my-bookings", b.MyBookings)
	r.GET("/bookings/:id", b.Get)
}
