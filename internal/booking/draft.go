package booking

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/venue-booking/internal/model"
)

// Stage names the shape of a draft.
type Stage string

const (
	StageEmpty      Stage = "empty"
	StageSlotSet    Stage = "slot_set"
	StagePackageSet Stage = "package_set"
	StageComplete   Stage = "complete"
)

// Slot is what the availability step records.
type Slot struct {
	EventID    uint64 `json:"event_id"`
	VenueID    uint64 `json:"venue_id"`
	ShiftID    uint64 `json:"shift_id"`
	EventDate  string `json:"event_date"`
	GuestCount int    `json:"guest_count"`
}

// PackageChoice is what the fare step records.
type PackageChoice struct {
	PackageID     uint64               `json:"package_id"`
	SelectedMenus model.MenuSelections `json:"selected_menus"`
	GuestCount    int                  `json:"guest_count"`
	Fare          Fare                 `json:"fare"`
}

// Draft is the in-progress booking of one session.  The concrete types are
// EmptyDraft, SlotDraft, PackageDraft and CompleteDraft; steps may run in
// any order so a package can be chosen before a slot.
type Draft interface {
	Stage() Stage
	draft()
}

type EmptyDraft struct{}

type SlotDraft struct{ Slot Slot }

type PackageDraft struct{ Choice PackageChoice }

type CompleteDraft struct {
	Slot   Slot
	Choice PackageChoice
}

func (EmptyDraft) Stage() Stage    { return StageEmpty }
func (SlotDraft) Stage() Stage     { return StageSlotSet }
func (PackageDraft) Stage() Stage  { return StagePackageSet }
func (CompleteDraft) Stage() Stage { return StageComplete }

func (EmptyDraft) draft()    {}
func (SlotDraft) draft()     {}
func (PackageDraft) draft()  {}
func (CompleteDraft) draft() {}

// WithSlot returns d with its slot replaced by s; a package choice is kept.
func WithSlot(d Draft, s Slot) Draft {
	if c, ok := ChoiceOf(d); ok {
		return CompleteDraft{Slot: s, Choice: c}
	}
	return SlotDraft{Slot: s}
}

// WithPackage returns d with its package choice replaced by p; a slot is kept.
func WithPackage(d Draft, p PackageChoice) Draft {
	if s, ok := SlotOf(d); ok {
		return CompleteDraft{Slot: s, Choice: p}
	}
	return PackageDraft{Choice: p}
}

// SlotOf returns the slot recorded in d, if any.
func SlotOf(d Draft) (Slot, bool) {
	switch v := d.(type) {
	case SlotDraft:
		return v.Slot, true
	case CompleteDraft:
		return v.Slot, true
	}
	return Slot{}, false
}

// ChoiceOf returns the package choice recorded in d, if any.
func ChoiceOf(d Draft) (PackageChoice, bool) {
	switch v := d.(type) {
	case PackageDraft:
		return v.Choice, true
	case CompleteDraft:
		return v.Choice, true
	}
	return PackageChoice{}, false
}

// envelope is the stored form of a draft.
type envelope struct {
	Stage  Stage          `json:"stage"`
	Slot   *Slot          `json:"slot,omitempty"`
	Choice *PackageChoice `json:"package,omitempty"`
}

var ErrMalformedDraft = errors.New("malformed draft")

// EncodeDraft serializes d with a stage discriminator.
func EncodeDraft(d Draft) ([]byte, error) {
	if d == nil {
		d = EmptyDraft{}
	}
	env := envelope{Stage: d.Stage()}
	if s, ok := SlotOf(d); ok {
		env.Slot = &s
	}
	if c, ok := ChoiceOf(d); ok {
		env.Choice = &c
	}
	return json.Marshal(env)
}

// DecodeDraft parses an encoded draft.  The fields present must match the
// declared stage exactly.
func DecodeDraft(b []byte) (Draft, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	hasSlot, hasChoice := env.Slot != nil, env.Choice != nil
	switch {
	case env.Stage == StageEmpty && !hasSlot && !hasChoice:
		return EmptyDraft{}, nil
	case env.Stage == StageSlotSet && hasSlot && !hasChoice:
		return SlotDraft{Slot: *env.Slot}, nil
	case env.Stage == StagePackageSet && !hasSlot && hasChoice:
		return PackageDraft{Choice: *env.Choice}, nil
	case env.Stage == StageComplete && hasSlot && hasChoice:
		return CompleteDraft{Slot: *env.Slot, Choice: *env.Choice}, nil
	}
	return nil, fmt.Errorf("%w: stage %q does not match its fields", ErrMalformedDraft, env.Stage)
}

// DraftView is the JSON shape returned to clients.
type DraftView struct {
	Stage   Stage          `json:"stage"`
	Slot    *Slot          `json:"slot,omitempty"`
	Package *PackageChoice `json:"package,omitempty"`
}

func ViewOf(d Draft) DraftView {
	if d == nil {
		d = EmptyDraft{}
	}
	v := DraftView{Stage: d.Stage()}
	if s, ok := SlotOf(d); ok {
		v.Slot = &s
	}
	if c, ok := ChoiceOf(d); ok {
		v.Package = &c
	}
	return v
}
