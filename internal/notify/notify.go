// Package notify delivers user-facing notifications. Delivery is
// fire-and-forget: a notifier must never block or fail the operation that
// emits the notification.
package notify

import "log/slog"

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(title, body string)
}

// Log writes notifications to the structured log. It stands in for a real
// delivery channel (toast, push, email) in server and test setups.
type Log struct{}

func (Log) Notify(title, body string) {
	slog.Info("notification", "title", title, "body", body)
}

// Func adapts a function to the Notifier interface.
type Func func(title, body string)

func (f Func) Notify(title, body string) { f(title, body) }
