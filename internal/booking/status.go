package booking

import (
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// transitions lists, per current status, the statuses it may move to.
var transitions = map[string]map[string]bool{
	model.StatusPending: {
		model.StatusPending: true, model.StatusConfirmed: true,
		model.StatusRejected: true, model.StatusCancelled: true,
	},
	model.StatusConfirmed: {
		model.StatusPending: true, model.StatusConfirmed: true,
		model.StatusRejected: true, model.StatusCancelled: true,
	},
	model.StatusCancelled: {model.StatusPending: true, model.StatusConfirmed: true},
	model.StatusRejected:  {model.StatusPending: true, model.StatusCancelled: true},
}

// ParseStatus lower-cases and trims s and reports whether it names a known status.
func ParseStatus(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	_, ok := transitions[s]
	return s, ok
}

// CanTransition reports whether a booking in status from may move to status to.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// Notifies reports whether entering status triggers customer notifications.
func Notifies(status string) bool {
	return status == model.StatusConfirmed || status == model.StatusCancelled
}

// ActiveStatus reports whether a booking in status holds its slot at the storage layer.
func ActiveStatus(status string) bool {
	return status == model.StatusPending || status == model.StatusConfirmed
}
