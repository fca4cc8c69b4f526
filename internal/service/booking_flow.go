// Package service orchestrates the booking flow on top of the rules in
// package booking, the draft store and the repositories.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/session"
)

type EventStore interface {
	List(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
}

type VenueStore interface {
	All(ctx context.Context) ([]model.Venue, error)
	GetVenue(ctx context.Context, id uint64) (*model.Venue, error)
}

type ShiftStore interface {
	List(ctx context.Context) ([]model.Shift, error)
	GetShift(ctx context.Context, id uint64) (*model.Shift, error)
}

type PackageStore interface {
	GetPackage(ctx context.Context, id uint64) (*model.Package, error)
}

type MenuStore interface {
	GetMenu(ctx context.Context, id uint64) (*model.Menu, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// BookingStore is the persistence the flow and the admin service need.
type BookingStore interface {
	SlotTaken(ctx context.Context, venueID uint64, eventDate string, shiftID uint64) (bool, error)
	CountByDate(ctx context.Context, eventDate string) (int, error)
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetDetail(ctx context.Context, id uint64) (*model.BookingDetail, error)
	ListDetails(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
}

// FlowDeps groups the collaborators of BookingFlow.
type FlowDeps struct {
	Drafts   session.DraftStore
	Events   EventStore
	Venues   VenueStore
	Shifts   ShiftStore
	Packages PackageStore
	Menus    MenuStore
	Users    UserStore
	Bookings BookingStore
	Config   config.BookingConfig
	Log      *zap.Logger
}

// BookingFlow implements the multi-step booking wizard.  Every step reads
// and writes the draft of one session; the final step persists a booking.
type BookingFlow struct {
	drafts   session.DraftStore
	events   EventStore
	venues   VenueStore
	shifts   ShiftStore
	packages PackageStore
	users    UserStore
	bookings BookingStore
	checker  *booking.AvailabilityChecker
	fares    *booking.FareCalculator
	cfg      config.BookingConfig
	log      *zap.Logger
}

func NewBookingFlow(d FlowDeps) *BookingFlow {
	if d.Drafts == nil || d.Events == nil || d.Venues == nil || d.Shifts == nil || d.Packages == nil ||
		d.Menus == nil || d.Users == nil || d.Bookings == nil {
		panic("nil dependency passed to NewBookingFlow")
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Config.DailyLimit <= 0 {
		d.Config.DailyLimit = 10
	}
	if d.Config.CountryCode == "" {
		d.Config.CountryCode = "+977"
	}
	return &BookingFlow{
		drafts:   d.Drafts,
		events:   d.Events,
		venues:   d.Venues,
		shifts:   d.Shifts,
		packages: d.Packages,
		users:    d.Users,
		bookings: d.Bookings,
		checker:  booking.NewAvailabilityChecker(d.Venues, d.Bookings),
		fares:    booking.NewFareCalculator(d.Packages, d.Menus, d.Config.MinGuests, d.Config.FallbackItemPrice),
		cfg:      d.Config,
		log:      d.Log,
	}
}

// InitiateResult is the catalog snapshot shown on the first step.
type InitiateResult struct {
	SessionID string            `json:"session_id"`
	Events    []model.Event     `json:"events"`
	Venues    []model.Venue     `json:"venues"`
	Shifts    []model.Shift     `json:"shifts"`
	Draft     booking.DraftView `json:"draft"`
}

// Initiate returns the catalog and the session's draft.  An empty or
// malformed session id is replaced by a new one.
func (f *BookingFlow) Initiate(ctx context.Context, sessionID string) (*InitiateResult, error) {
	if !session.ValidID(sessionID) {
		sessionID = session.NewID()
	}
	events, err := f.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	venues, err := f.venues.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	shifts, err := f.shifts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	d, err := f.drafts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if d.Stage() == booking.StageEmpty {
		if err := f.drafts.Save(ctx, sessionID, d); err != nil {
			return nil, err
		}
	}
	return &InitiateResult{SessionID: sessionID, Events: events, Venues: venues, Shifts: shifts, Draft: booking.ViewOf(d)}, nil
}

// DateAvailability answers the coarse "is this day still open" question.
type DateAvailability struct {
	EventDate string `json:"event_date"`
	Bookings  int    `json:"bookings"`
	Limit     int    `json:"limit"`
	Available bool   `json:"available"`
}

// CheckDate reports a date as available while it has fewer bookings than
// the daily limit.
func (f *BookingFlow) CheckDate(ctx context.Context, eventDate string) (*DateAvailability, error) {
	eventDate = strings.TrimSpace(eventDate)
	if _, err := time.Parse(booking.DateLayout, eventDate); err != nil {
		return nil, apperr.Validation("invalid_date", "event_date must be a date in YYYY-MM-DD format")
	}
	n, err := f.bookings.CountByDate(ctx, eventDate)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	return &DateAvailability{EventDate: eventDate, Bookings: n, Limit: f.cfg.DailyLimit, Available: n < f.cfg.DailyLimit}, nil
}

// SlotInput is the payload of the availability step.
type SlotInput struct {
	EventID    uint64 `json:"event_id"`
	VenueID    uint64 `json:"venue_id"`
	ShiftID    uint64 `json:"shift_id"`
	EventDate  string `json:"event_date"`
	GuestCount int    `json:"guest_count"`
}

func (in SlotInput) validate() (booking.Slot, error) {
	var fields []apperr.FieldError
	if in.EventID == 0 {
		fields = append(fields, apperr.FieldError{Field: "event_id", Message: "required"})
	}
	if in.VenueID == 0 {
		fields = append(fields, apperr.FieldError{Field: "venue_id", Message: "required"})
	}
	if in.ShiftID == 0 {
		fields = append(fields, apperr.FieldError{Field: "shift_id", Message: "required"})
	}
	date := strings.TrimSpace(in.EventDate)
	if _, err := time.Parse(booking.DateLayout, date); err != nil {
		fields = append(fields, apperr.FieldError{Field: "event_date", Message: "must be a date in YYYY-MM-DD format"})
	}
	if in.GuestCount < 1 {
		fields = append(fields, apperr.FieldError{Field: "guest_count", Message: "must be at least 1"})
	}
	if len(fields) > 0 {
		return booking.Slot{}, apperr.InvalidFields("invalid slot", fields)
	}
	return booking.Slot{EventID: in.EventID, VenueID: in.VenueID, ShiftID: in.ShiftID, EventDate: date, GuestCount: in.GuestCount}, nil
}

// SetSlot checks availability and records the slot in the draft.  The draft
// is left untouched on any failure.
func (f *BookingFlow) SetSlot(ctx context.Context, sessionID string, in SlotInput) (booking.DraftView, error) {
	slot, err := in.validate()
	if err != nil {
		return booking.DraftView{}, err
	}
	if _, err := f.events.GetEvent(ctx, slot.EventID); err != nil {
		return booking.DraftView{}, notFoundOr(err, "event")
	}
	if _, err := f.shifts.GetShift(ctx, slot.ShiftID); err != nil {
		return booking.DraftView{}, notFoundOr(err, "shift")
	}
	avail, err := f.checker.Check(ctx, booking.SlotQuery{
		VenueID: slot.VenueID, EventDate: slot.EventDate, ShiftID: slot.ShiftID, GuestCount: slot.GuestCount,
	})
	if err != nil {
		return booking.DraftView{}, err
	}
	if err := avail.Err(); err != nil {
		return booking.DraftView{}, err
	}
	d, err := f.drafts.Load(ctx, sessionID)
	if err != nil {
		return booking.DraftView{}, err
	}
	d = booking.WithSlot(d, slot)
	if err := f.drafts.Save(ctx, sessionID, d); err != nil {
		return booking.DraftView{}, err
	}
	return booking.ViewOf(d), nil
}

// PackageInput is the payload of the fare step.
type PackageInput struct {
	PackageID     uint64               `json:"package_id"`
	GuestCount    int                  `json:"guest_count"`
	SelectedMenus model.MenuSelections `json:"selected_menus"`
}

// SetPackageAndMenu prices the selection and records it in the draft.
func (f *BookingFlow) SetPackageAndMenu(ctx context.Context, sessionID string, in PackageInput) (booking.Fare, booking.DraftView, error) {
	if in.PackageID == 0 {
		return booking.Fare{}, booking.DraftView{}, apperr.InvalidFields("invalid package selection",
			[]apperr.FieldError{{Field: "package_id", Message: "required"}})
	}
	sel := in.SelectedMenus
	if sel == nil {
		sel = model.MenuSelections{}
	}
	fare, err := f.fares.Calculate(ctx, in.PackageID, in.GuestCount, sel)
	if err != nil {
		return booking.Fare{}, booking.DraftView{}, err
	}
	d, err := f.drafts.Load(ctx, sessionID)
	if err != nil {
		return booking.Fare{}, booking.DraftView{}, err
	}
	d = booking.WithPackage(d, booking.PackageChoice{
		PackageID: in.PackageID, GuestCount: in.GuestCount, SelectedMenus: sel, Fare: fare,
	})
	if err := f.drafts.Save(ctx, sessionID, d); err != nil {
		return booking.Fare{}, booking.DraftView{}, err
	}
	return fare, booking.ViewOf(d), nil
}

// Draft returns the current draft of a session.
func (f *BookingFlow) Draft(ctx context.Context, sessionID string) (booking.DraftView, error) {
	d, err := f.drafts.Load(ctx, sessionID)
	if err != nil {
		return booking.DraftView{}, err
	}
	return booking.ViewOf(d), nil
}

// Commit validates the full payload again, checks it against the draft,
// re-runs availability and pricing, and stores a pending booking.  The
// draft is reset only after the booking is stored.
func (f *BookingFlow) Commit(ctx context.Context, sessionID string, req booking.CommitRequest) (*model.Booking, error) {
	v, err := req.Validate(f.cfg.CountryCode)
	if err != nil {
		return nil, err
	}
	d, err := f.drafts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := v.MatchDraft(d); err != nil {
		return nil, err
	}

	if _, err := f.users.GetByID(ctx, v.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Validation("invalid_user", "user does not exist")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := f.referencesExist(ctx, v); err != nil {
		return nil, err
	}

	avail, err := f.checker.Check(ctx, booking.SlotQuery{
		VenueID: v.Slot.VenueID, EventDate: v.Slot.EventDate, ShiftID: v.Slot.ShiftID, GuestCount: v.Slot.GuestCount,
	})
	if err != nil {
		return nil, err
	}
	if err := avail.Err(); err != nil {
		return nil, err
	}

	fare, err := f.fares.Calculate(ctx, v.PackageID, v.Slot.GuestCount, v.SelectedMenus)
	if err != nil {
		return nil, err
	}
	if !booking.SameAmount(fare.BaseFare, v.Fare.BaseFare) || !booking.SameAmount(fare.ExtraCharges, v.Fare.ExtraCharges) ||
		!booking.SameAmount(fare.TotalFare, v.Fare.TotalFare) {
		return nil, apperr.Validation("fare_mismatch", fmt.Sprintf("submitted fare does not match the current price (%s)", booking.FormatNPR(fare.TotalFare)))
	}

	b := &model.Booking{
		UserID: v.UserID, EventID: v.Slot.EventID, VenueID: v.Slot.VenueID, ShiftID: v.Slot.ShiftID,
		PackageID: v.PackageID, EventDate: v.Slot.EventDate, GuestCount: v.Slot.GuestCount,
		SelectedMenus: v.SelectedMenus,
		BaseFare:      fare.BaseFare, ExtraCharges: fare.ExtraCharges, TotalFare: fare.TotalFare,
		Phone: v.Phone,
	}
	if err := f.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperr.Conflict("slot_taken", "venue is already booked for this date and shift").Wrap(err)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if err := f.drafts.Clear(ctx, sessionID); err != nil {
		f.log.Warn("booking stored but draft not cleared", zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
	f.log.Info("booking created", zap.Uint64("booking_id", b.ID), zap.Uint64("user_id", b.UserID),
		zap.Uint64("venue_id", b.VenueID), zap.String("event_date", b.EventDate))
	return b, nil
}

func (f *BookingFlow) referencesExist(ctx context.Context, v booking.ValidCommit) error {
	checks := []struct {
		name string
		get  func() error
	}{
		{"event", func() error { _, err := f.events.GetEvent(ctx, v.Slot.EventID); return err }},
		{"venue", func() error { _, err := f.venues.GetVenue(ctx, v.Slot.VenueID); return err }},
		{"shift", func() error { _, err := f.shifts.GetShift(ctx, v.Slot.ShiftID); return err }},
		{"package", func() error { _, err := f.packages.GetPackage(ctx, v.PackageID); return err }},
	}
	for _, c := range checks {
		if err := c.get(); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.Validation("invalid_reference", c.name+" does not exist")
			}
			return fmt.Errorf("load %s: %w", c.name, err)
		}
	}
	return nil
}

// notFoundOr maps sql.ErrNoRows to a NotFound error for what.
func notFoundOr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
