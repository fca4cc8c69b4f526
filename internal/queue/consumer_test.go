package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditConsumerHandleAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	c := &AuditConsumer{LogPath: path}

	body, err := json.Marshal(BookingStatusChangedEvent{
		BookingID: 42, UserID: 7, PreviousStatus: "pending", Status: "confirmed",
		EventName: "Wedding", VenueName: "Grand Hall", ShiftName: "Evening",
		EventDate: "2025-12-01", GuestCount: 120, TotalFare: 61000,
		EmailOutcome: "sent", SMSOutcome: "failed", ChangedAt: "2025-11-01T10:00:00Z",
	})
	require.NoError(t, err)
	require.NoError(t, c.Handle(body))
	require.NoError(t, c.Handle(body))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Booking pending -> confirmed | booking_id=42")
	assert.Contains(t, lines[0], `venue="Grand Hall"`)
	assert.Contains(t, lines[0], "total=61000.00 NPR")
}

func TestAuditConsumerHandleRejectsGarbage(t *testing.T) {
	c := &AuditConsumer{LogPath: filepath.Join(t.TempDir(), "booking.log")}
	assert.Error(t, c.Handle([]byte("{")))
	assert.Error(t, c.Handle([]byte(`{"status":"confirmed"}`)))
}
