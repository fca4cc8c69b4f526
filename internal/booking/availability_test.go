package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/model"
)

func TestAvailabilityChecker(t *testing.T) {
	cat := newFakeCatalog()
	cat.venues[1] = &model.Venue{ID: 1, Name: "Grand Hall", Capacity: 100}
	cat.taken[slotKey(1, "2025-12-01", 2)] = true
	checker := NewAvailabilityChecker(cat, cat)
	ctx := context.Background()

	tests := []struct {
		name   string
		q      SlotQuery
		avail  bool
		reason string
	}{
		{"fits and free", SlotQuery{VenueID: 1, EventDate: "2025-12-01", ShiftID: 1, GuestCount: 100}, true, ""},
		{"over capacity", SlotQuery{VenueID: 1, EventDate: "2025-12-01", ShiftID: 1, GuestCount: 120}, false, ReasonCapacityExceeded},
		{"slot taken", SlotQuery{VenueID: 1, EventDate: "2025-12-01", ShiftID: 2, GuestCount: 50}, false, ReasonSlotTaken},
		{"capacity is checked first", SlotQuery{VenueID: 1, EventDate: "2025-12-01", ShiftID: 2, GuestCount: 500}, false, ReasonCapacityExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.Check(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.avail, got.Available)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestAvailabilityCheckerIsIdempotent(t *testing.T) {
	cat := newFakeCatalog()
	cat.venues[1] = &model.Venue{ID: 1, Capacity: 100}
	checker := NewAvailabilityChecker(cat, cat)
	q := SlotQuery{VenueID: 1, EventDate: "2025-12-01", ShiftID: 1, GuestCount: 80}

	first, err := checker.Check(context.Background(), q)
	require.NoError(t, err)
	second, err := checker.Check(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAvailabilityCheckerUnknownVenue(t *testing.T) {
	checker := NewAvailabilityChecker(newFakeCatalog(), newFakeCatalog())
	_, err := checker.Check(context.Background(), SlotQuery{VenueID: 9, EventDate: "2025-12-01", ShiftID: 1, GuestCount: 10})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAvailabilityCheckerStorageError(t *testing.T) {
	cat := newFakeCatalog()
	cat.venues[1] = &model.Venue{ID: 1, Capacity: 100}
	cat.err = errors.New("connection reset")
	_, err := NewAvailabilityChecker(cat, cat).Check(context.Background(), SlotQuery{VenueID: 1, EventDate: "2025-12-01", ShiftID: 1, GuestCount: 10})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestAvailabilityErr(t *testing.T) {
	assert.NoError(t, Availability{Available: true}.Err())

	ae, ok := apperr.As(Availability{Reason: ReasonCapacityExceeded}.Err())
	require.True(t, ok)
	assert.Equal(t, "capacity_exceeded", ae.Code)

	ae, ok = apperr.As(Availability{Reason: ReasonSlotTaken}.Err())
	require.True(t, ok)
	assert.Equal(t, "slot_taken", ae.Code)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
}
