// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify defines the alert notification channels.

Notifier is the channel interface:

	type Notifier interface {
		Name() string
		Send(ctx context.Context, a Alert) error
	}

Two implementations are provided:

  - EmailNotifier: HTML mail over SMTP with STARTTLS
  - SMSNotifier: Texts through a Twilio-compatible REST API

Both are constructed from their config sections and registered with the
alert evaluator at startup.
*/
package notify
