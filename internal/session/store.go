// Package session keeps the per-session booking draft between the steps
// of the booking flow.
package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/venue-booking/internal/booking"
)

// DraftStore loads and saves drafts by session id.  Load returns an
// EmptyDraft for unknown or expired sessions.
type DraftStore interface {
	Load(ctx context.Context, sessionID string) (booking.Draft, error)
	Save(ctx context.Context, sessionID string, d booking.Draft) error
	Clear(ctx context.Context, sessionID string) error
}

// NewID returns a fresh session id.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id looks like an id issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
