// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/models"
)

// SMSNotifier sends alert texts through a Twilio-compatible REST API.
type SMSNotifier struct {
	cfg  config.SMSConfig
	http *http.Client
}

func NewSMSNotifier(cfg config.SMSConfig) *SMSNotifier {
	return &SMSNotifier{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SMSNotifier) Name() string { return models.ChannelSMS }

func (s *SMSNotifier) Send(ctx context.Context, a Alert) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.cfg.APIBase, "/"), url.PathEscape(s.cfg.AccountSID))

	for _, to := range s.cfg.To {
		form := url.Values{}
		form.Set("From", s.cfg.From)
		form.Set("To", to)
		form.Set("Body", a.Subject())

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to build sms request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

		resp, err := s.http.Do(req)
		if err != nil {
			return fmt.Errorf("sms request to %s failed: %w", to, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("sms API returned status %d for %s", resp.StatusCode, to)
		}
	}

	return nil
}
