package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/config"
)

// SMTPSender sends HTML mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: auth,
		from: cfg.From,
		send: smtp.SendMail,
	}
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, html string) error {
	from, err := mail.ParseAddress(s.from)
	if err != nil {
		return fmt.Errorf("parse sender %q: %w", s.from, err)
	}
	msg := buildMIME(s.from, to, subject, html, time.Now())
	done := make(chan error, 1)
	go func() { done <- s.send(s.addr, s.auth, from.Address, []string{to}, msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMIME(from, to, subject, html string, at time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(html)
	return b.Bytes()
}

// LogEmailSender only logs; it is used when no SMTP host is configured.
type LogEmailSender struct{ Log *zap.Logger }

func (s LogEmailSender) SendEmail(_ context.Context, to, subject, html string) error {
	l := s.Log
	if l == nil {
		l = zap.NewNop()
	}
	l.Info("mock email", zap.String("to", to), zap.String("subject", subject), zap.Int("bytes", len(html)))
	return nil
}

// NewEmailSender picks the SMTP or the logging sender from cfg.
func NewEmailSender(cfg config.MailConfig, log *zap.Logger) EmailSender {
	if cfg.Mock {
		return LogEmailSender{Log: log}
	}
	return NewSMTPSender(cfg)
}
