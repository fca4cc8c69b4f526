package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// invalidate drops the catalog cache after every successful write.
func RegisterAdmin(e *echo.Echo, c *handler.CatalogHandler, b *handler.BookingHandler, a *handler.AuthHandler, jwtSecret string, invalidate echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		invalidate,
	)

	// ---- Catalog ----
	g.POST("/events", c.CreateEvent)
	g.PUT("/events/:id", c.UpdateEvent)
	g.DELETE("/events/:id", c.DeleteEvent)

	g.POST("/venues", c.CreateVenue)
	g.PUT("/venues/:id", c.UpdateVenue)
	g.DELETE("/venues/:id", c.DeleteVenue)

	g.POST("/shifts", c.CreateShift)
	g.PUT("/shifts/:id", c.UpdateShift)
	g.DELETE("/shifts/:id", c.DeleteShift)

	g.POST("/packages", c.CreatePackage)
	g.PUT("/packages/:id", c.UpdatePackage)
	g.DELETE("/packages/:id", c.DeletePackage)

	g.POST("/menus", c.CreateMenu)
	g.PUT("/menus/:id", c.UpdateMenu)
	g.DELETE("/menus/:id", c.DeleteMenu)

	// ---- Bookings ----
	g.GET("/bookings", b.ListAll)
	g.GET("/bookings/:id", b.Get)
	g.DELETE("/bookings/:id", b.Delete)
	g.PATCH("/bookings/:id/status", b.UpdateStatus)

	// ---- Users ----
	g.GET("/users/:id/bookings", b.ListForUser)
	g.DELETE("/users/:id", a.DeleteUser)
}
