// Package booking holds the rules of the booking flow: slot availability,
// fare calculation, the per-session draft and the status table.  It talks to
// storage only through the small reader interfaces declared here.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/model"
)

// Reasons reported when a slot cannot be booked.
const (
	ReasonCapacityExceeded = "capacity exceeded"
	ReasonSlotTaken        = "slot taken"
)

// VenueReader loads a venue; it returns sql.ErrNoRows when the venue is missing.
type VenueReader interface {
	GetVenue(ctx context.Context, id uint64) (*model.Venue, error)
}

// SlotReader reports whether any booking row exists for the triple.
type SlotReader interface {
	SlotTaken(ctx context.Context, venueID uint64, eventDate string, shiftID uint64) (bool, error)
}

// SlotQuery is the input of an availability check.
type SlotQuery struct {
	VenueID    uint64
	EventDate  string
	ShiftID    uint64
	GuestCount int
}

// Availability is the outcome of a check.  Reason is empty when Available.
type Availability struct {
	Available bool
	Reason    string
}

// Err converts an unavailable result into a validation error; it returns
// nil when the slot is available.
func (a Availability) Err() error {
	if a.Available {
		return nil
	}
	code := "slot_taken"
	msg := "venue is already booked for this date and shift"
	if a.Reason == ReasonCapacityExceeded {
		code = "capacity_exceeded"
		msg = "guest count exceeds venue capacity"
	}
	return apperr.Validation(code, msg)
}

// AvailabilityChecker decides whether a (venue, date, shift) slot can take a
// booking of a given size.  It never writes.
type AvailabilityChecker struct {
	Venues VenueReader
	Slots  SlotReader
}

func NewAvailabilityChecker(venues VenueReader, slots SlotReader) *AvailabilityChecker {
	if venues == nil || slots == nil {
		panic("nil reader passed to NewAvailabilityChecker")
	}
	return &AvailabilityChecker{Venues: venues, Slots: slots}
}

// Check runs the capacity test first and the conflict test second.  Any
// existing row for the slot counts as a conflict, whatever its status.
func (c *AvailabilityChecker) Check(ctx context.Context, q SlotQuery) (Availability, error) {
	v, err := c.Venues.GetVenue(ctx, q.VenueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Availability{}, apperr.NotFound("venue")
		}
		return Availability{}, fmt.Errorf("load venue %d: %w", q.VenueID, err)
	}
	if q.GuestCount > v.Capacity {
		return Availability{Reason: ReasonCapacityExceeded}, nil
	}
	taken, err := c.Slots.SlotTaken(ctx, q.VenueID, q.EventDate, q.ShiftID)
	if err != nil {
		return Availability{}, fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return Availability{Reason: ReasonSlotTaken}, nil
	}
	return Availability{Available: true}, nil
}
