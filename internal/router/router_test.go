package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/utils"
)

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newRouter() *echo.Echo {
	e := echo.New()
	catalog := &handler.CatalogHandler{}
	bookings := &handler.BookingHandler{}
	auth := &handler.AuthHandler{}
	sess := config.SessionConfig{CookieName: "booking_session", Header: "X-Booking-Session"}

	RegisterRoutes(e, nil, "public")
	RegisterAuth(e, auth, &handler.OtpHandler{}, "secret", passThrough)
	RegisterPublic(e, catalog, passThrough)
	RegisterBooking(e, bookings, catalog, "secret", sess)
	RegisterAdmin(e, catalog, bookings, auth, "secret", passThrough)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newRouter()
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/login",
		"POST /v1/otp/send",
		"GET /v1/me",
		"GET /v1/venues",
		"GET /v1/packages/:id/menus",
		"GET /v1/booking/initiate",
		"POST /v1/booking/store",
		"GET /v1/my-bookings",
		"PATCH /v1/admin/bookings/:id/status",
		"DELETE /v1/admin/users/:id",
		"POST /v1/admin/venues",
	} {
		assert.True(t, have[want], want)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingRequiresToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/booking/initiate", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRequiresRole(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 5, model.RoleCustomer, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/bookings", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
