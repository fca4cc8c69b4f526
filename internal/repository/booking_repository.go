package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/venue-booking/internal/model"
)

// BookingRepo stores bookings.  Event dates travel as YYYY-MM-DD strings and
// are compared against the DATE column directly.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const dateLayout = "2006-01-02"

// SlotTaken reports whether any booking, in any status, exists for the slot.
func (r *BookingRepo) SlotTaken(ctx context.Context, venueID uint64, eventDate string, shiftID uint64) (bool, error) {
	return slotTaken(ctx, r.db, venueID, eventDate, shiftID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func slotTaken(ctx context.Context, q queryer, venueID uint64, eventDate string, shiftID uint64) (bool, error) {
	var id uint64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM bookings WHERE venue_id=? AND event_date=? AND shift_id=? LIMIT 1",
		venueID, eventDate, shiftID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountByDate returns how many bookings exist on a calendar date.
func (r *BookingRepo) CountByDate(ctx context.Context, eventDate string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE event_date=?", eventDate).Scan(&n)
	return n, err
}

// Create inserts b with status pending.  Inside one transaction the venue
// row is locked and the slot re-checked, so two commits for the same venue
// serialize; the unique key on active_slot backs this up.  On success b.ID
// and the timestamps are populated.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	menus, err := json.Marshal(b.SelectedMenus)
	if err != nil {
		return fmt.Errorf("encode selected menus: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var venueID uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM venues WHERE id=? FOR UPDATE", b.VenueID).Scan(&venueID); err != nil {
		return err
	}
	taken, err := slotTaken(ctx, tx, b.VenueID, b.EventDate, b.ShiftID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	b.Status = model.StatusPending
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, event_id, venue_id, shift_id, package_id, event_date, guest_count,
		 selected_menus, base_fare, extra_charges, total_fare, phone, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.EventID, b.VenueID, b.ShiftID, b.PackageID, b.EventDate, b.GuestCount,
		menus, b.BaseFare, b.ExtraCharges, b.TotalFare, b.Phone, b.Status)
	if err != nil {
		if isDuplicate(err, "uq_bookings_active_slot") {
			return ErrSlotTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx, "SELECT created_at, updated_at FROM bookings WHERE id=?", id).
		Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	b.ID = uint64(id)
	return nil
}

const bookingColumns = `b.id, b.user_id, b.event_id, b.venue_id, b.shift_id, b.package_id, b.event_date,
	b.guest_count, b.selected_menus, b.base_fare, b.extra_charges, b.total_fare, b.phone, b.status,
	b.created_at, b.updated_at`

const detailColumns = bookingColumns + `, e.name, v.name, s.name, p.name, u.name, u.email`

const detailJoins = ` FROM bookings b
	JOIN events e   ON e.id = b.event_id
	JOIN venues v   ON v.id = b.venue_id
	JOIN shifts s   ON s.id = b.shift_id
	JOIN packages p ON p.id = b.package_id
	JOIN users u    ON u.id = b.user_id`

// bookingScanner routes the DATE and JSON columns through temporaries.
type bookingScanner struct {
	date  time.Time
	menus []byte
}

func (s *bookingScanner) targets(b *model.Booking) []any {
	return []any{&b.ID, &b.UserID, &b.EventID, &b.VenueID, &b.ShiftID, &b.PackageID, &s.date,
		&b.GuestCount, &s.menus, &b.BaseFare, &b.ExtraCharges, &b.TotalFare, &b.Phone, &b.Status,
		&b.CreatedAt, &b.UpdatedAt}
}

func (s *bookingScanner) finish(b *model.Booking) error {
	b.EventDate = s.date.Format(dateLayout)
	b.SelectedMenus = model.MenuSelections{}
	if len(s.menus) > 0 {
		if err := json.Unmarshal(s.menus, &b.SelectedMenus); err != nil {
			return fmt.Errorf("booking %d selected menus: %w", b.ID, err)
		}
	}
	return nil
}

func scanDetail(row interface{ Scan(...any) error }) (*model.BookingDetail, error) {
	var (
		d  model.BookingDetail
		bs bookingScanner
	)
	t := append(bs.targets(&d.Booking), &d.EventName, &d.VenueName, &d.ShiftName, &d.PackageName, &d.UserName, &d.UserEmail)
	if err := row.Scan(t...); err != nil {
		return nil, err
	}
	if err := bs.finish(&d.Booking); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID loads a bare booking row.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var (
		b  model.Booking
		bs bookingScanner
	)
	if err := r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id=?", id).
		Scan(bs.targets(&b)...); err != nil {
		return nil, err
	}
	if err := bs.finish(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetDetail loads a booking with event, venue, shift, package and user names.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	return scanDetail(r.db.QueryRowContext(ctx, "SELECT "+detailColumns+detailJoins+" WHERE b.id=?", id))
}

// ListDetails returns bookings newest first; userID 0 lists every booking.
func (r *BookingRepo) ListDetails(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	q := "SELECT " + detailColumns + detailJoins
	var args []any
	if userID != 0 {
		q += " WHERE b.user_id=?"
		args = append(args, userID)
	}
	q += " ORDER BY b.event_date DESC, b.id DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BookingDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpdateStatus persists a new status.  Re-activating a booking whose slot
// has since been taken by another active booking yields ErrSlotTaken.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE bookings SET status=? WHERE id=?", status, id)
	if err != nil {
		if isDuplicate(err, "uq_bookings_active_slot") {
			return ErrSlotTaken
		}
		return err
	}
	return requireAffected(res)
}

// Delete removes a booking permanently.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
