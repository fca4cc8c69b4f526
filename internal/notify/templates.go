package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// bookingMail is the data handed to the booking templates.
type bookingMail struct {
	ID           uint64
	CustomerName string
	EventName    string
	VenueName    string
	ShiftName    string
	PackageName  string
	EventDate    string
	GuestCount   int
	Phone        string
	TotalFare    string
}

func mailData(d *model.BookingDetail) bookingMail {
	name := d.UserName
	if name == "" {
		name = "there"
	}
	return bookingMail{
		ID:           d.ID,
		CustomerName: name,
		EventName:    d.EventName,
		VenueName:    d.VenueName,
		ShiftName:    d.ShiftName,
		PackageName:  d.PackageName,
		EventDate:    d.EventDate,
		GuestCount:   d.GuestCount,
		Phone:        d.Phone,
		TotalFare:    booking.FormatNPR(d.TotalFare),
	}
}

// BookingStatusMessage builds the confirmed/cancelled notification for d.
// It returns false for statuses that do not notify.
func BookingStatusMessage(d *model.BookingDetail) (Message, bool, error) {
	var (
		tmpl, subject, text string
	)
	switch d.Status {
	case model.StatusConfirmed:
		tmpl, subject = "booking_confirmed.html", "Your Booking is Confirmed!"
		text = fmt.Sprintf("EventEase: Your booking #%d at %s on %s (%s) is confirmed. Total %s.",
			d.ID, d.VenueName, d.EventDate, d.ShiftName, booking.FormatNPR(d.TotalFare))
	case model.StatusCancelled:
		tmpl, subject = "booking_cancelled.html", "Your Booking Has Been Cancelled"
		text = fmt.Sprintf("EventEase: Your booking #%d at %s on %s (%s) has been cancelled.",
			d.ID, d.VenueName, d.EventDate, d.ShiftName)
	default:
		return Message{}, false, nil
	}
	html, err := render(tmpl, mailData(d))
	if err != nil {
		return Message{}, false, err
	}
	return Message{
		Ref:     fmt.Sprintf("booking:%d", d.ID),
		EmailTo: d.UserEmail,
		Subject: subject,
		HTML:    html,
		SMSTo:   d.Phone,
		SMSText: text,
	}, true, nil
}

// BookingSubmittedMessage builds the generic "we got your booking" notification.
func BookingSubmittedMessage(d *model.BookingDetail, email string) (Message, error) {
	html, err := render("booking_submitted.html", mailData(d))
	if err != nil {
		return Message{}, err
	}
	return Message{
		Ref:     fmt.Sprintf("booking:%d", d.ID),
		EmailTo: email,
		Subject: "Booking Confirmation",
		HTML:    html,
		SMSTo:   d.Phone,
		SMSText: fmt.Sprintf("EventEase: We received booking #%d for %s on %s. Total %s. We will confirm shortly.",
			d.ID, d.VenueName, d.EventDate, booking.FormatNPR(d.TotalFare)),
	}, nil
}

// OtpMessage delivers a one-time code on both channels.
func OtpMessage(name, email, phone, code string, validFor time.Duration) (Message, error) {
	html, err := render("otp.html", map[string]any{"Name": name, "Code": code, "ValidMinutes": int(validFor.Minutes())})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Ref:     "otp:" + email,
		EmailTo: email,
		Subject: "Your verification code",
		HTML:    html,
		SMSTo:   phone,
		SMSText: fmt.Sprintf("EventEase: your code is %s. It expires in %d minutes.", code, int(validFor.Minutes())),
	}, nil
}

// LinkMessage builds the e-mail-only verification or reset message.
// kind is "verify" or "reset".
func LinkMessage(kind, name, email, baseURL, token string, validFor time.Duration) (Message, error) {
	q := url.Values{"token": {token}, "email": {email}}
	var tmpl, subject, path string
	switch kind {
	case "verify":
		tmpl, subject, path = "verify_email.html", "Verify your e-mail address", "/verify-email"
	case "reset":
		tmpl, subject, path = "reset_password.html", "Reset your password", "/reset-password"
	default:
		return Message{}, fmt.Errorf("unknown link message %q", kind)
	}
	html, err := render(tmpl, map[string]any{
		"Name": name, "Link": baseURL + path + "?" + q.Encode(), "ValidFor": humanDuration(validFor),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Ref: kind + ":" + email, EmailTo: email, Subject: subject, HTML: html}, nil
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		if h := int(d / time.Hour); h > 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
