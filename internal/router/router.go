package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication and are
// not part of the API: health checks and the uploaded images under /public.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, uploadDir string) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.Static("/public", uploadDir)
}

// RegisterAuth registers account routes.  Unauthenticated operations live
// under /v1/auth and /v1/otp behind the stricter limiter; the signed-in
// user's own account lives under /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o *handler.OtpHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.GET("/verify-email", a.VerifyEmail)
	g.POST("/resend-verification", a.ResendVerification)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.POST("/password/forgot", a.ForgotPassword)
	g.POST("/password/reset", a.ResetPassword)

	otp := e.Group("/v1/otp", limiter)
	otp.POST("/send", o.Send)
	otp.POST("/verify", o.Verify)

	me := e.Group("/v1/me",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	me.GET("", a.Me)
	me.PUT("", a.UpdateMe)
	me.PUT("/password", a.ChangePassword)
}

// RegisterPublic registers the catalog reads guests use to browse.  cache is
// the Redis response cache (a pass-through when Redis is not configured).
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/events", h.ListEvents)
	g.GET("/venues", h.ListVenues)
	g.GET("/venues/:id", h.GetVenue)
	g.GET("/shifts", h.ListShifts)
	g.GET("/shifts/:id", h.GetShift)
	g.GET("/packages", h.ListPackages)
	g.GET("/packages/:id", h.GetPackage)
	g.GET("/packages/:id/menus", h.ListMenus)
}
