package booking

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/model"
)

// DateLayout is the wire and storage format of event dates.
const DateLayout = "2006-01-02"

// CommitRequest is the payload of the final step.  Fare fields are decoded
// loosely so that numeric strings are accepted and anything else can be
// reported as a validation error instead of a bind failure.
type CommitRequest struct {
	UserID        uint64               `json:"user_id"`
	EventID       uint64               `json:"event_id"`
	VenueID       uint64               `json:"venue_id"`
	ShiftID       uint64               `json:"shift_id"`
	PackageID     uint64               `json:"package_id"`
	EventDate     string               `json:"event_date"`
	GuestCount    int                  `json:"guest_count"`
	SelectedMenus model.MenuSelections `json:"selected_menus"`
	BaseFare      any                  `json:"base_fare"`
	ExtraCharges  any                  `json:"extra_charges"`
	TotalFare     any                  `json:"total_fare"`
	Phone         string               `json:"customer_phone"`
}

// ValidCommit is a CommitRequest that passed Validate: fares are parsed and
// the phone is normalized.
type ValidCommit struct {
	Slot          Slot
	UserID        uint64
	PackageID     uint64
	SelectedMenus model.MenuSelections
	Fare          Fare
	Phone         string
}

// Validate checks the payload without touching storage.
func (r CommitRequest) Validate(countryCode string) (ValidCommit, error) {
	var fields []apperr.FieldError
	bad := func(field, msg string) { fields = append(fields, apperr.FieldError{Field: field, Message: msg}) }

	if r.UserID == 0 {
		bad("user_id", "required")
	}
	if r.EventID == 0 {
		bad("event_id", "required")
	}
	if r.VenueID == 0 {
		bad("venue_id", "required")
	}
	if r.ShiftID == 0 {
		bad("shift_id", "required")
	}
	if r.PackageID == 0 {
		bad("package_id", "required")
	}
	date := strings.TrimSpace(r.EventDate)
	if _, err := time.Parse(DateLayout, date); err != nil {
		bad("event_date", "must be a date in YYYY-MM-DD format")
	}
	if r.GuestCount < 1 {
		bad("guest_count", "must be at least 1")
	}
	base, ok := ParseAmount(r.BaseFare)
	if !ok || base < 0 {
		bad("base_fare", "must be a non-negative number")
	}
	extra, ok := ParseAmount(r.ExtraCharges)
	if !ok || extra < 0 {
		bad("extra_charges", "must be a non-negative number")
	}
	total, ok := ParseAmount(r.TotalFare)
	if !ok || total < 0 {
		bad("total_fare", "must be a non-negative number")
	}
	phone := NormalizePhone(r.Phone, countryCode)
	if phone == "" {
		bad("customer_phone", "must be a 10 digit number or an international number starting with +")
	}
	if len(fields) > 0 {
		return ValidCommit{}, apperr.InvalidFields("invalid booking details", fields)
	}
	if !SameAmount(base+extra, total) {
		return ValidCommit{}, apperr.Validation("fare_mismatch", "total_fare must equal base_fare + extra_charges")
	}
	sel := r.SelectedMenus
	if sel == nil {
		sel = model.MenuSelections{}
	}
	return ValidCommit{
		Slot: Slot{
			EventID: r.EventID, VenueID: r.VenueID, ShiftID: r.ShiftID,
			EventDate: date, GuestCount: r.GuestCount,
		},
		UserID:        r.UserID,
		PackageID:     r.PackageID,
		SelectedMenus: sel,
		Fare:          Fare{BaseFare: round2(base), ExtraCharges: round2(extra), TotalFare: round2(total)},
		Phone:         phone,
	}, nil
}

// MatchDraft compares the resubmitted values with what the session recorded.
// Missing draft parts are not checked.
func (v ValidCommit) MatchDraft(d Draft) error {
	if s, ok := SlotOf(d); ok {
		if s.EventID != v.Slot.EventID || s.VenueID != v.Slot.VenueID || s.ShiftID != v.Slot.ShiftID || s.EventDate != v.Slot.EventDate {
			return apperr.Validation("draft_mismatch", "booking details differ from the checked slot")
		}
		if _, hasChoice := ChoiceOf(d); !hasChoice && s.GuestCount != v.Slot.GuestCount {
			return apperr.Validation("draft_mismatch", "guest count differs from the checked slot")
		}
	}
	if c, ok := ChoiceOf(d); ok {
		if c.PackageID != v.PackageID || c.GuestCount != v.Slot.GuestCount {
			return apperr.Validation("draft_mismatch", "package or guest count differs from the priced selection")
		}
		if !sameSelections(c.SelectedMenus, v.SelectedMenus) {
			return apperr.Validation("draft_mismatch", "menu selection differs from the priced selection")
		}
	}
	return nil
}

func sameSelections(a, b model.MenuSelections) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// ParseAmount accepts JSON numbers and numeric strings.
func ParseAmount(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FormatNPR renders an amount the way notifications show it.
func FormatNPR(v float64) string {
	return fmt.Sprintf("NPR %.2f", v)
}
