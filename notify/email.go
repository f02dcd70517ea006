// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/models"
)

// EmailNotifier sends alert mail over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg config.EmailConfig

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail}
}

func (e *EmailNotifier) Name() string { return models.ChannelEmail }

func (e *EmailNotifier) Send(ctx context.Context, a Alert) error {
	addr := fmt.Sprintf("%s:%d", e.cfg.Server, e.cfg.Port)

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Server)
	}

	msg := BuildEmailMessage(e.cfg.From, e.cfg.To, a)

	// net/smtp has no context support; run it in a goroutine so a hung
	// server cannot stall the poll loop past the caller's deadline.
	done := make(chan error, 1)
	go func() {
		done <- e.send(addr, auth, e.cfg.From, e.cfg.To, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BuildEmailMessage renders the full RFC 5322 message with an HTML body.
func BuildEmailMessage(from string, to []string, a Alert) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", a.Subject())
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, `<html><body>
<h2>Radiation Threshold Exceeded</h2>
<p>Device <b>%s</b> reported <b>%.1f CPM</b> at %s.</p>
<p>The configured alert threshold is %.1f CPM.</p>
</body></html>
`, a.DeviceURN, a.Reading, a.When.UTC().Format("2006-01-02 15:04:05 UTC"), a.Threshold)

	return []byte(b.String())
}
