// Package notify carries fire-and-forget UI notifications from the chat
// pipeline to whatever is listening (toasts in the dashboard UI).
package notify

// Severity classifies a notification for the UI.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is one toast-style signal. It is never required reading:
// dropping it must not affect pipeline correctness.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Notifier delivers notifications for one session. Implementations must not
// block the caller.
type Notifier interface {
	Notify(n Notification)
}

// Discard is a Notifier that drops everything.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(Notification) {}
