package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// Notifier fans a message out over e-mail and SMS.
type Notifier interface {
	Send(ctx context.Context, m notify.Message) notify.Report
}

// notifyTimeout bounds delivery after the request that triggered it is gone.
const notifyTimeout = 30 * time.Second

// BookingService covers the reads and administrative writes on stored
// bookings, including the notifications they trigger.
type BookingService struct {
	bookings  BookingStore
	notifier  Notifier
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewBookingService(bookings BookingStore, notifier Notifier, publisher EventPublisher, log *zap.Logger) *BookingService {
	if bookings == nil || notifier == nil {
		panic("nil dependency passed to NewBookingService")
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingService{bookings: bookings, notifier: notifier, publisher: publisher, log: log, now: time.Now}
}

// StatusResult is returned by UpdateStatus.  Notifications is nil when the
// new status does not notify.
type StatusResult struct {
	Booking       *model.BookingDetail `json:"booking"`
	Notifications *notify.Report       `json:"notifications,omitempty"`
}

// UpdateStatus moves a booking to status when the status table allows it.
// Entering confirmed or cancelled sends one e-mail and one SMS; delivery
// failures are reported but do not undo the change.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint64, status string) (*StatusResult, error) {
	to, ok := booking.ParseStatus(status)
	if !ok {
		return nil, apperr.Validation("invalid_status", "status must be one of pending, confirmed, rejected, cancelled")
	}
	cur, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	if !booking.CanTransition(cur.Status, to) {
		return nil, apperr.Validation("invalid_transition", fmt.Sprintf("cannot change status from %s to %s", cur.Status, to))
	}
	if err := s.bookings.UpdateStatus(ctx, id, to); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperr.Conflict("slot_taken", "another active booking holds this slot").Wrap(err)
		}
		return nil, notFoundOr(err, "booking")
	}
	detail, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	s.log.Info("booking status changed", zap.Uint64("booking_id", id),
		zap.String("from", cur.Status), zap.String("to", to))

	res := &StatusResult{Booking: detail}
	ev := queue.BookingStatusChangedEvent{
		BookingID: detail.ID, UserID: detail.UserID, PreviousStatus: cur.Status, Status: to,
		EventName: detail.EventName, VenueID: detail.VenueID, VenueName: detail.VenueName,
		ShiftName: detail.ShiftName, EventDate: detail.EventDate, GuestCount: detail.GuestCount,
		TotalFare: detail.TotalFare, EmailOutcome: string(notify.Skipped), SMSOutcome: string(notify.Skipped),
		ChangedAt: s.now().UTC().Format(time.RFC3339),
	}

	if booking.Notifies(to) {
		msg, ok, err := notify.BookingStatusMessage(detail)
		if err != nil {
			s.log.Error("render status notification", zap.Uint64("booking_id", id), zap.Error(err))
		} else if ok {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
			rep := s.notifier.Send(nctx, msg)
			cancel()
			res.Notifications = &rep
			ev.EmailOutcome, ev.SMSOutcome = string(rep.Email), string(rep.SMS)
		}
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishStatusChanged(pctx, ev); err != nil {
		s.log.Warn("publish status change", zap.Uint64("booking_id", id), zap.Error(err))
	}
	return res, nil
}

// SendConfirmation e-mails the "booking received" summary to email and
// texts the booking phone.  Customers may only do this for their own
// bookings.
func (s *BookingService) SendConfirmation(ctx context.Context, id uint64, email string, requester uint64, admin bool) (notify.Report, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return notify.Report{}, apperr.InvalidFields("invalid e-mail",
			[]apperr.FieldError{{Field: "email", Message: "must be a valid e-mail address"}})
	}
	detail, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return notify.Report{}, notFoundOr(err, "booking")
	}
	if !admin && detail.UserID != requester {
		return notify.Report{}, apperr.Forbidden("booking belongs to another user")
	}
	msg, err := notify.BookingSubmittedMessage(detail, email)
	if err != nil {
		return notify.Report{}, fmt.Errorf("render confirmation: %w", err)
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	rep := s.notifier.Send(nctx, msg)
	if rep.AllFailed() {
		return rep, fmt.Errorf("confirmation for booking %d not delivered", id)
	}
	return rep, nil
}

// Get returns one booking; customers only see their own.
func (s *BookingService) Get(ctx context.Context, id, requester uint64, admin bool) (*model.BookingDetail, error) {
	d, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	if !admin && d.UserID != requester {
		// same answer as a missing booking so ids cannot be probed
		return nil, apperr.NotFound("booking")
	}
	return d, nil
}

// ListForUser returns the bookings of one customer.
func (s *BookingService) ListForUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	return s.bookings.ListDetails(ctx, userID)
}

// ListAll returns every booking.
func (s *BookingService) ListAll(ctx context.Context) ([]model.BookingDetail, error) {
	return s.bookings.ListDetails(ctx, 0)
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, id uint64) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("booking")
		}
		return err
	}
	s.log.Info("booking deleted", zap.Uint64("booking_id", id))
	return nil
}
