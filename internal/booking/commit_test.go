package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/model"
)

func validRequest() CommitRequest {
	return CommitRequest{
		UserID: 11, EventID: 1, VenueID: 2, ShiftID: 3, PackageID: 4,
		EventDate: "2025-12-01", GuestCount: 50,
		SelectedMenus: model.MenuSelections{7: {0, 2}},
		BaseFare:      25000.0, ExtraCharges: "0", TotalFare: 25000.0,
		Phone: "9812345678",
	}
}

func TestCommitValidateAcceptsNumericStrings(t *testing.T) {
	v, err := validRequest().Validate("+977")
	require.NoError(t, err)
	assert.Equal(t, "+9779812345678", v.Phone)
	assert.Equal(t, 25000.0, v.Fare.TotalFare)
	assert.Equal(t, testSlot, v.Slot)
}

func TestCommitValidateRejectsBadFares(t *testing.T) {
	for _, total := range []any{-1.0, "abc", nil, true, "NaN"} {
		req := validRequest()
		req.TotalFare = total
		_, err := req.Validate("+977")
		ae, ok := apperr.As(err)
		require.True(t, ok, "total %v", total)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		require.Len(t, ae.Fields, 1)
		assert.Equal(t, "total_fare", ae.Fields[0].Field)
	}
}

func TestCommitValidateCollectsFieldErrors(t *testing.T) {
	_, err := CommitRequest{EventDate: "01/12/2025", BaseFare: 1, ExtraCharges: 0, TotalFare: 1}.Validate("+977")
	ae, ok := apperr.As(err)
	require.True(t, ok)
	var names []string
	for _, f := range ae.Fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"user_id", "event_id", "venue_id", "shift_id", "package_id", "event_date", "guest_count", "customer_phone"}, names)
}

func TestCommitValidateTotalMustAddUp(t *testing.T) {
	req := validRequest()
	req.ExtraCharges = 100.0
	_, err := req.Validate("+977")
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "fare_mismatch", ae.Code)
}

func TestMatchDraft(t *testing.T) {
	v, err := validRequest().Validate("+977")
	require.NoError(t, err)

	assert.NoError(t, v.MatchDraft(EmptyDraft{}))
	assert.NoError(t, v.MatchDraft(CompleteDraft{Slot: testSlot, Choice: testChoice}))

	other := testSlot
	other.VenueID = 99
	assert.True(t, apperr.Is(v.MatchDraft(SlotDraft{Slot: other}), apperr.KindValidation))

	changed := testChoice
	changed.SelectedMenus = model.MenuSelections{7: {2, 0}}
	assert.True(t, apperr.Is(v.MatchDraft(PackageDraft{Choice: changed}), apperr.KindValidation))
}

func TestParseAmount(t *testing.T) {
	f, ok := ParseAmount("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)
	_, ok = ParseAmount("12,5")
	assert.False(t, ok)
	_, ok = ParseAmount(map[string]any{})
	assert.False(t, ok)
}
