package notifications

import "context"

// Request is one notification the core asks the delivery layer to send.
// Delivery transport (push, socket, email) is external; the core only emits
// the request and never waits on the outcome.
type Request struct {
	UserID  string         `json:"userId"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notifier emits notification requests. Implementations must be safe for
// concurrent use; callers treat failures as log-and-continue.
type Notifier interface {
	Notify(ctx context.Context, req Request) error
}
