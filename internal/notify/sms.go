package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/config"
)

// GatewaySMSSender posts auth_token, to and text as a form to an HTTP SMS
// gateway (Aakash SMS by default).
type GatewaySMSSender struct {
	apiURL string
	token  string
	client *http.Client
}

func NewGatewaySMSSender(cfg config.SMSConfig, client *http.Client) *GatewaySMSSender {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GatewaySMSSender{apiURL: cfg.APIURL, token: cfg.AuthToken, client: client}
}

func (s *GatewaySMSSender) SendSMS(ctx context.Context, to, text string) error {
	form := url.Values{}
	form.Set("auth_token", s.token)
	form.Set("to", to)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// LogSMSSender only logs; it is used when no gateway token is configured.
type LogSMSSender struct{ Log *zap.Logger }

func (s LogSMSSender) SendSMS(_ context.Context, to, text string) error {
	l := s.Log
	if l == nil {
		l = zap.NewNop()
	}
	l.Info("mock sms", zap.String("to", to), zap.String("text", text))
	return nil
}

// NewSMSSender picks the gateway or the logging sender from cfg.
func NewSMSSender(cfg config.SMSConfig, log *zap.Logger) SMSSender {
	if cfg.Mock {
		return LogSMSSender{Log: log}
	}
	return NewGatewaySMSSender(cfg, nil)
}
