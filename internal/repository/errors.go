// Package repository defines the MySQL data access layer.  Lookups return
// sql.ErrNoRows (possibly wrapped) when a row is missing; the sentinel
// values below cover the remaining failure cases handlers care about.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because other rows still reference the target (e.g. deleting a venue
// that has bookings).  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrSlotTaken is returned when an active booking already holds the
// (venue, date, shift) slot, detected either by the locked re-check or by
// the unique key on bookings.active_slot.
var ErrSlotTaken = errors.New("slot already booked")

var (
	ErrEmailExists = errors.New("email already exists")
	ErrPhoneExists = errors.New("phone already exists")
)

// MySQL server error numbers we react to.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func mysqlErrNumber(err error) (uint16, string) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number, me.Message
	}
	return 0, ""
}

// isDuplicate reports whether err is a unique key violation, optionally on
// the named key.
func isDuplicate(err error, key string) bool {
	n, msg := mysqlErrNumber(err)
	if n != mysqlDuplicateEntry {
		return false
	}
	return key == "" || strings.Contains(msg, key)
}

// isReferenced reports whether err is a foreign key violation in either direction.
func isReferenced(err error) bool {
	n, _ := mysqlErrNumber(err)
	return n == mysqlRowIsReferenced || n == mysqlNoReferencedRow
}
