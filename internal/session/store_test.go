package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/booking"
)

var slot = booking.Slot{EventID: 1, VenueID: 2, ShiftID: 3, EventDate: "2025-12-01", GuestCount: 40}

func exerciseStore(t *testing.T, s DraftStore) {
	ctx := context.Background()
	id := NewID()

	d, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, booking.EmptyDraft{}, d)

	require.NoError(t, s.Save(ctx, id, booking.SlotDraft{Slot: slot}))
	d, err = s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, booking.SlotDraft{Slot: slot}, d)

	other := NewID()
	d, err = s.Load(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, booking.StageEmpty, d.Stage(), "sessions are isolated")

	require.NoError(t, s.Clear(ctx, id))
	d, err = s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, booking.StageEmpty, d.Stage())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Minute))
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(context.Background(), "a", booking.SlotDraft{Slot: slot}))
	now = now.Add(2 * time.Minute)
	d, err := s.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, booking.StageEmpty, d.Stage())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb, "booking:draft", 30*time.Minute)
	exerciseStore(t, s)
}

func TestRedisStoreTTLAndCorruption(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb, "booking:draft", 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", booking.SlotDraft{Slot: slot}))
	assert.Equal(t, 30*time.Minute, mr.TTL("booking:draft:abc"))

	mr.FastForward(31 * time.Minute)
	d, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, booking.StageEmpty, d.Stage())

	require.NoError(t, mr.Set("booking:draft:bad", `{"stage":"complete"}`))
	d, err = s.Load(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, booking.StageEmpty, d.Stage())
	assert.False(t, mr.Exists("booking:draft:bad"))
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(NewID()))
	assert.False(t, ValidID("not-a-session"))
}
