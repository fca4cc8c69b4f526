package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/model"
)

type MockEmailSender struct{ mock.Mock }

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, html string) error {
	return m.Called(ctx, to, subject, html).Error(0)
}

type MockSMSSender struct{ mock.Mock }

func (m *MockSMSSender) SendSMS(ctx context.Context, to, text string) error {
	return m.Called(ctx, to, text).Error(0)
}

func TestDispatcherSendsBothChannels(t *testing.T) {
	email, sms := new(MockEmailSender), new(MockSMSSender)
	email.On("SendEmail", mock.Anything, "a@example.com", "hi", "<p>x</p>").Return(nil).Once()
	sms.On("SendSMS", mock.Anything, "+9779812345678", "hi").Return(nil).Once()

	rep := NewDispatcher(email, sms, zap.NewNop()).Send(context.Background(), Message{
		EmailTo: "a@example.com", Subject: "hi", HTML: "<p>x</p>", SMSTo: "+9779812345678", SMSText: "hi",
	})
	assert.Equal(t, Sent, rep.Email)
	assert.Equal(t, Sent, rep.SMS)
	assert.False(t, rep.AllFailed())
	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestDispatcherOneFailureDoesNotStopTheOther(t *testing.T) {
	email, sms := new(MockEmailSender), new(MockSMSSender)
	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	rep := NewDispatcher(email, sms, nil).Send(context.Background(), Message{EmailTo: "a@example.com", SMSTo: "+9779812345678"})
	assert.Equal(t, Failed, rep.Email)
	assert.EqualError(t, rep.EmailErr, "smtp down")
	assert.Equal(t, Sent, rep.SMS)
	sms.AssertExpectations(t)
}

func TestDispatcherSkipsChannelsWithoutRecipient(t *testing.T) {
	email, sms := new(MockEmailSender), new(MockSMSSender)
	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	rep := NewDispatcher(email, sms, nil).Send(context.Background(), Message{EmailTo: "a@example.com"})
	assert.Equal(t, Sent, rep.Email)
	assert.Equal(t, Skipped, rep.SMS)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestGatewaySMSSenderPostsForm(t *testing.T) {
	var (
		mu  sync.Mutex
		got url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got, _ = url.ParseQuery(string(body))
		mu.Unlock()
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewGatewaySMSSender(config.SMSConfig{APIURL: srv.URL, AuthToken: "tok", Timeout: time.Second}, nil)
	require.NoError(t, s.SendSMS(context.Background(), "+9779812345678", "hello"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "tok", got.Get("auth_token"))
	assert.Equal(t, "+9779812345678", got.Get("to"))
	assert.Equal(t, "hello", got.Get("text"))
}

func TestGatewaySMSSenderReportsGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewGatewaySMSSender(config.SMSConfig{APIURL: srv.URL, Timeout: time.Second}, nil)
	err := s.SendSMS(context.Background(), "+9779812345678", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "EventEase <no-reply@example.com>"})
	var (
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		gotFrom, gotTo, gotMsg = from, to, string(msg)
		return nil
	}
	require.NoError(t, s.SendEmail(context.Background(), "a@example.com", "Your Booking is Confirmed!", "<p>ok</p>"))
	assert.Equal(t, "no-reply@example.com", gotFrom)
	assert.Equal(t, []string{"a@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(gotMsg, "<p>ok</p>"))
}

func detail(status string) *model.BookingDetail {
	return &model.BookingDetail{
		Booking: model.Booking{ID: 42, EventDate: "2025-12-01", GuestCount: 120, Phone: "+9779812345678",
			TotalFare: 61000, Status: status},
		EventName: "Wedding", VenueName: "Grand Hall", ShiftName: "Evening", PackageName: "Gold",
		UserName: "Asha", UserEmail: "asha@example.com",
	}
}

func TestBookingStatusMessage(t *testing.T) {
	m, ok, err := BookingStatusMessage(detail(model.StatusConfirmed))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Your Booking is Confirmed!", m.Subject)
	assert.Equal(t, "asha@example.com", m.EmailTo)
	assert.Equal(t, "+9779812345678", m.SMSTo)
	for _, want := range []string{"#42", "Wedding", "Grand Hall", "Evening", "Gold", "2025-12-01", "120", "NPR 61000.00"} {
		assert.Contains(t, m.HTML, want)
	}

	m, ok, err = BookingStatusMessage(detail(model.StatusCancelled))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Your Booking Has Been Cancelled", m.Subject)

	_, ok, err = BookingStatusMessage(detail(model.StatusRejected))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkMessage(t *testing.T) {
	m, err := LinkMessage("verify", "Asha", "asha@example.com", "https://app.example.com", "abc", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, m.HTML, "https://app.example.com/verify-email?email=asha%40example.com&amp;token=abc")
	assert.Contains(t, m.HTML, "1 hour")
	assert.Empty(t, m.SMSTo)

	_, err = LinkMessage("other", "", "", "", "", time.Minute)
	assert.Error(t, err)
}
