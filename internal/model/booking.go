package model

import "time"

// Booking statuses as stored in bookings.status.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// MenuSelections maps a menu id to the ordered item indexes the customer
// picked from it.  Order matters: the first free_limit entries are free.
type MenuSelections map[uint64][]int

// Booking mirrors a row of the `bookings` table.  EventDate is kept as the
// ISO calendar date string (YYYY-MM-DD).
type Booking struct {
	ID            uint64         `json:"id"`
	UserID        uint64         `json:"user_id"`
	EventID       uint64         `json:"event_id"`
	VenueID       uint64         `json:"venue_id"`
	ShiftID       uint64         `json:"shift_id"`
	PackageID     uint64         `json:"package_id"`
	EventDate     string         `json:"event_date"`
	GuestCount    int            `json:"guest_count"`
	SelectedMenus MenuSelections `json:"selected_menus"`
	BaseFare      float64        `json:"base_fare"`
	ExtraCharges  float64        `json:"extra_charges"`
	TotalFare     float64        `json:"total_fare"`
	Phone         string         `json:"customer_phone"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// BookingDetail is a booking joined with the display names of everything it
// references; it feeds both API responses and notification templates.
type BookingDetail struct {
	Booking
	EventName   string `json:"event_name"`
	VenueName   string `json:"venue_name"`
	ShiftName   string `json:"shift_name"`
	PackageName string `json:"package_name"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
}
