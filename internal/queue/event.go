// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// BookingStatusChangedEvent is published after an administrator changes the
// status of a booking.  It carries enough context for downstream consumers
// (audit log, analytics) to work without querying the primary database.
type BookingStatusChangedEvent struct {
	BookingID      uint64  `json:"booking_id"`
	UserID         uint64  `json:"user_id"`
	PreviousStatus string  `json:"previous_status"`
	Status         string  `json:"status"`
	EventName      string  `json:"event_name"`
	VenueID        uint64  `json:"venue_id"`
	VenueName      string  `json:"venue_name"`
	ShiftName      string  `json:"shift_name"`
	EventDate      string  `json:"event_date"`
	GuestCount     int     `json:"guest_count"`
	TotalFare      float64 `json:"total_fare"`
	EmailOutcome   string  `json:"email"`
	SMSOutcome     string  `json:"sms"`
	ChangedAt      string  `json:"changed_at"`
}
