package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/service"
)

// Flow is the booking wizard; *service.BookingFlow satisfies it.
type Flow interface {
	Initiate(ctx context.Context, sessionID string) (*service.InitiateResult, error)
	CheckDate(ctx context.Context, eventDate string) (*service.DateAvailability, error)
	SetSlot(ctx context.Context, sessionID string, in service.SlotInput) (booking.DraftView, error)
	SetPackageAndMenu(ctx context.Context, sessionID string, in service.PackageInput) (booking.Fare, booking.DraftView, error)
	Draft(ctx context.Context, sessionID string) (booking.DraftView, error)
	Commit(ctx context.Context, sessionID string, req booking.CommitRequest) (*model.Booking, error)
}

// Bookings covers stored bookings; *service.BookingService satisfies it.
type Bookings interface {
	UpdateStatus(ctx context.Context, id uint64, status string) (*service.StatusResult, error)
	SendConfirmation(ctx context.Context, id uint64, email string, requester uint64, admin bool) (notify.Report, error)
	Get(ctx context.Context, id, requester uint64, admin bool) (*model.BookingDetail, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	ListAll(ctx context.Context) ([]model.BookingDetail, error)
	Delete(ctx context.Context, id uint64) error
}

// BookingHandler serves the booking wizard and booking reads and admin
// actions.
type BookingHandler struct {
	Flow     Flow
	Bookings Bookings
}

func NewBookingHandler(f Flow, b Bookings) *BookingHandler {
	return &BookingHandler{Flow: f, Bookings: b}
}

type checkDateReq struct {
	EventDate string `json:"event_date"`
}

type confirmationReq struct {
	BookingID uint64 `json:"booking_id"`
	Email     string `json:"email"`
}

type statusReq struct {
	Status string `json:"status"`
}

// Initiate returns the catalog snapshot and the session draft.
func (h *BookingHandler) Initiate(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	res, err := h.Flow.Initiate(ctx, middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) CheckDate(c echo.Context) error {
	var req checkDateReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	res, err := h.Flow.CheckDate(ctx, req.EventDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// CheckAvailability records the slot in the draft when it can be booked.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	var req service.SlotInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	view, err := h.Flow.SetSlot(ctx, middleware.SessionID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"available": true, "message": "venue is available", "draft": view})
}

// CalculateFare prices the package and menu selection and records it.
func (h *BookingHandler) CalculateFare(c echo.Context) error {
	var req service.PackageInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	fare, view, err := h.Flow.SetPackageAndMenu(ctx, middleware.SessionID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"base_fare": fare.BaseFare, "extra_charges": fare.ExtraCharges, "total_fare": fare.TotalFare,
		"draft": view,
	})
}

func (h *BookingHandler) Draft(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	view, err := h.Flow.Draft(ctx, middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"draft": view})
}

// Store commits the booking.  The user id always comes from the token.
func (h *BookingHandler) Store(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req booking.CommitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.UserID = uid
	ctx, cancel := reqContext(c)
	defer cancel()
	b, err := h.Flow.Commit(ctx, middleware.SessionID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "booking created", "booking_id": b.ID, "booking": b})
}

func (h *BookingHandler) SendConfirmation(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req confirmationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.BookingID == 0 {
		return apperr.InvalidFields("invalid request", []apperr.FieldError{{Field: "booking_id", Message: "required"}})
	}
	rep, err := h.Bookings.SendConfirmation(c.Request().Context(), req.BookingID, req.Email, uid, middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "confirmation sent", "notifications": rep})
}

// MyBookings lists the caller's bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	list, err := h.Bookings.ListForUser(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// Get returns one booking; customers only see their own.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	d, err := h.Bookings.Get(ctx, id, uid, middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": d})
}

func (h *BookingHandler) ListAll(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	list, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// ListForUser is the admin view of one customer's bookings.
func (h *BookingHandler) ListForUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	list, err := h.Bookings.ListForUser(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "bookings": list})
}

// UpdateStatus changes a booking status and reports notification outcomes.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.Bookings.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Bookings.Delete(ctx, id); err != nil {
		return err
	}
	return message(c, http.StatusOK, "booking deleted")
}
