package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/model"
)

var (
	testSlot   = Slot{EventID: 1, VenueID: 2, ShiftID: 3, EventDate: "2025-12-01", GuestCount: 50}
	testChoice = PackageChoice{
		PackageID: 4, GuestCount: 50,
		SelectedMenus: model.MenuSelections{7: {0, 2}},
		Fare:          Fare{BaseFare: 25000, ExtraCharges: 0, TotalFare: 25000},
	}
)

func TestDraftTransitions(t *testing.T) {
	var d Draft = EmptyDraft{}
	assert.Equal(t, StageEmpty, d.Stage())

	d = WithSlot(d, testSlot)
	assert.Equal(t, StageSlotSet, d.Stage())

	d = WithPackage(d, testChoice)
	require.Equal(t, StageComplete, d.Stage())
	s, _ := SlotOf(d)
	assert.Equal(t, testSlot, s)

	moved := testSlot
	moved.ShiftID = 9
	d = WithSlot(d, moved)
	c, ok := ChoiceOf(d)
	require.True(t, ok, "choice survives a new slot")
	assert.Equal(t, testChoice, c)
}

func TestDraftPackageBeforeSlot(t *testing.T) {
	d := WithPackage(EmptyDraft{}, testChoice)
	assert.Equal(t, StagePackageSet, d.Stage())
	_, ok := SlotOf(d)
	assert.False(t, ok)

	d = WithSlot(d, testSlot)
	assert.Equal(t, StageComplete, d.Stage())
}

func TestDraftEncodingRoundTrip(t *testing.T) {
	for _, d := range []Draft{EmptyDraft{}, SlotDraft{Slot: testSlot}, PackageDraft{Choice: testChoice}, CompleteDraft{Slot: testSlot, Choice: testChoice}} {
		b, err := EncodeDraft(d)
		require.NoError(t, err)
		got, err := DecodeDraft(b)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestDecodeDraftRejectsInconsistentEnvelope(t *testing.T) {
	for _, raw := range []string{
		`{"stage":"complete","slot":{"venue_id":1}}`,
		`{"stage":"empty","package":{"package_id":1}}`,
		`{"stage":"paid"}`,
		`not json`,
	} {
		_, err := DecodeDraft([]byte(raw))
		assert.True(t, errors.Is(err, ErrMalformedDraft), raw)
	}
}

func TestViewOf(t *testing.T) {
	v := ViewOf(nil)
	assert.Equal(t, StageEmpty, v.Stage)
	assert.Nil(t, v.Slot)

	v = ViewOf(CompleteDraft{Slot: testSlot, Choice: testChoice})
	require.NotNil(t, v.Slot)
	require.NotNil(t, v.Package)
	assert.Equal(t, uint64(4), v.Package.PackageID)
}
