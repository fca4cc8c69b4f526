package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/model"
)

func newBooking() *model.Booking {
	return &model.Booking{
		UserID: 1, EventID: 2, VenueID: 3, ShiftID: 4, PackageID: 5,
		EventDate: "2025-12-01", GuestCount: 50,
		SelectedMenus: model.MenuSelections{7: {0, 2}},
		BaseFare:      25000, ExtraCharges: 0, TotalFare: 25000,
		Phone: "+9779812345678",
	}
}

func TestBookingRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepo(db)
	now := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM venues WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM bookings WHERE venue_id=? AND event_date=? AND shift_id=?")).
		WithArgs(uint64(3), "2025-12-01", uint64(4)).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(uint64(1), uint64(2), uint64(3), uint64(4), uint64(5), "2025-12-01", 50,
			[]byte(`{"7":[0,2]}`), 25000.0, 0.0, 25000.0, "+9779812345678", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM bookings WHERE id=?")).
		WithArgs(int64(42)).WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	b := newBooking()
	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, uint64(42), b.ID)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, now, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCreateSlotTakenOnRecheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery("SELECT id FROM bookings").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectRollback()

	err = NewBookingRepo(db).Create(context.Background(), newBooking())
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCreateUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery("SELECT id FROM bookings").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO bookings").WillReturnError(&mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry '3:2025-12-01:4' for key 'bookings.uq_bookings_active_slot'",
	})
	mock.ExpectRollback()

	err = NewBookingRepo(db).Create(context.Background(), newBooking())
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoSlotTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectQuery("SELECT id FROM bookings").WillReturnError(sql.ErrNoRows)
	taken, err := repo.SlotTaken(context.Background(), 3, "2025-12-01", 4)
	require.NoError(t, err)
	assert.False(t, taken)

	mock.ExpectQuery("SELECT id FROM bookings").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	taken, err = repo.SlotTaken(context.Background(), 3, "2025-12-01", 4)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestBookingRepoGetDetail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()
	cols := []string{"id", "user_id", "event_id", "venue_id", "shift_id", "package_id", "event_date",
		"guest_count", "selected_menus", "base_fare", "extra_charges", "total_fare", "phone", "status",
		"created_at", "updated_at", "e", "v", "s", "p", "un", "ue"}
	mock.ExpectQuery("SELECT (.+) FROM bookings b").WithArgs(uint64(42)).WillReturnRows(
		sqlmock.NewRows(cols).AddRow(42, 1, 2, 3, 4, 5, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			50, []byte(`{"7":[0,2]}`), 25000.0, 0.0, 25000.0, "+9779812345678", "confirmed",
			now, now, "Wedding", "Grand Hall", "Evening", "Gold", "Asha", "asha@example.com"))

	d, err := NewBookingRepo(db).GetDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", d.EventDate)
	assert.Equal(t, model.MenuSelections{7: {0, 2}}, d.SelectedMenus)
	assert.Equal(t, "Grand Hall", d.VenueName)
	assert.Equal(t, "asha@example.com", d.UserEmail)
}

func TestBookingRepoUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectExec("UPDATE bookings SET status").WithArgs("confirmed", uint64(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), 1, "confirmed"), sql.ErrNoRows)

	mock.ExpectExec("UPDATE bookings SET status").WillReturnError(&mysql.MySQLError{
		Number: 1062, Message: "Duplicate entry for key 'bookings.uq_bookings_active_slot'"})
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), 2, "pending"), ErrSlotTaken)
}
