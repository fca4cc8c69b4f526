// Package notify delivers customer notifications over e-mail and SMS.
// Delivery is best effort: failures are logged and reported, never retried.
package notify

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EmailSender delivers one HTML e-mail.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// SMSSender delivers one text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, text string) error
}

// Message is one notification fanned out over both channels.  An empty
// recipient skips that channel.
type Message struct {
	Ref     string // booking id or user id, for logs
	EmailTo string
	Subject string
	HTML    string
	SMSTo   string
	SMSText string
}

// Outcome of one channel.
type Outcome string

const (
	Sent    Outcome = "sent"
	Failed  Outcome = "failed"
	Skipped Outcome = "skipped"
)

// Report tells the caller what happened on each channel.
type Report struct {
	Email    Outcome `json:"email"`
	SMS      Outcome `json:"sms"`
	EmailErr error   `json:"-"`
	SMSErr   error   `json:"-"`
}

// AllFailed reports whether every attempted channel failed.
func (r Report) AllFailed() bool {
	return r.Email != Sent && r.SMS != Sent
}

// Dispatcher sends a Message on both channels concurrently.
type Dispatcher struct {
	email EmailSender
	sms   SMSSender
	log   *zap.Logger
}

func NewDispatcher(email EmailSender, sms SMSSender, log *zap.Logger) *Dispatcher {
	if email == nil || sms == nil {
		panic("nil sender passed to NewDispatcher")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{email: email, sms: sms, log: log}
}

// Send starts both channels and waits for both.  Goroutines always return
// nil so one failure never cancels or hides the other.
func (d *Dispatcher) Send(ctx context.Context, m Message) Report {
	rep := Report{Email: Skipped, SMS: Skipped}
	var g errgroup.Group

	if m.EmailTo != "" {
		g.Go(func() error {
			if err := d.email.SendEmail(ctx, m.EmailTo, m.Subject, m.HTML); err != nil {
				d.log.Error("email notification failed", zap.String("ref", m.Ref), zap.String("to", m.EmailTo), zap.Error(err))
				rep.Email, rep.EmailErr = Failed, err
				return nil
			}
			rep.Email = Sent
			return nil
		})
	}
	if m.SMSTo != "" {
		g.Go(func() error {
			if err := d.sms.SendSMS(ctx, m.SMSTo, m.SMSText); err != nil {
				d.log.Error("sms notification failed", zap.String("ref", m.Ref), zap.String("to", m.SMSTo), zap.Error(err))
				rep.SMS, rep.SMSErr = Failed, err
				return nil
			}
			rep.SMS = Sent
			return nil
		})
	}
	_ = g.Wait()
	return rep
}
