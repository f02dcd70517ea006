// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/louisbertrand/map-louis/config"
)

func testAlert() Alert {
	return Alert{
		DeviceURN: "geigiecast:63209",
		Reading:   152.5,
		Threshold: 100,
		When:      time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestBuildEmailMessage(t *testing.T) {
	msg := string(BuildEmailMessage("alerts@example.org", []string{"a@example.org", "b@example.org"}, testAlert()))

	for _, want := range []string{
		"From: alerts@example.org\r\n",
		"To: a@example.org, b@example.org\r\n",
		"Subject: Radiation alert: geigiecast:63209 at 152.5 CPM (threshold 100.0)\r\n",
		"Content-Type: text/html",
		"<b>152.5 CPM</b>",
		"2025-06-01 12:30:00 UTC",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}

	// Headers and body must be separated by a blank line
	if !strings.Contains(msg, "\r\n\r\n<html>") {
		t.Error("expected blank line before HTML body")
	}
}

func TestEmailNotifierSend(t *testing.T) {
	cfg := config.EmailConfig{
		Server: "smtp.example.org",
		Port:   587,
		From:   "alerts@example.org",
		To:     []string{"ops@example.org"},
	}

	n := NewEmailNotifier(cfg)

	var gotAddr, gotFrom string
	var gotTo []string
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		return nil
	}

	if err := n.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotAddr != "smtp.example.org:587" {
		t.Errorf("unexpected addr: %s", gotAddr)
	}
	if gotFrom != "alerts@example.org" || len(gotTo) != 1 || gotTo[0] != "ops@example.org" {
		t.Errorf("unexpected envelope: from=%s to=%v", gotFrom, gotTo)
	}
}

func TestEmailNotifierSendError(t *testing.T) {
	n := NewEmailNotifier(config.EmailConfig{Server: "smtp.example.org", Port: 587})
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	if err := n.Send(context.Background(), testAlert()); err == nil {
		t.Error("expected error from failing transport")
	}
}

func TestEmailNotifierRespectsContext(t *testing.T) {
	n := NewEmailNotifier(config.EmailConfig{Server: "smtp.example.org", Port: 587})
	block := make(chan struct{})
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-block
		return nil
	}
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := n.Send(ctx, testAlert()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}
