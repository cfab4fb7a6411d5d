package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"instructor-backend/internal/shared/telemetry"
)

// SubjectDispatch is the subject the delivery service listens on.
const SubjectDispatch = "notification.dispatch"

// NATSNotifier publishes notification requests over NATS. The delivery
// service owns fan-out to the user's actual channels.
type NATSNotifier struct {
	conn *nats.Conn
}

func NewNATSNotifier(url string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	telemetry.Info("connected to NATS", map[string]any{"url": url})
	return &NATSNotifier{conn: conn}, nil
}

func (n *NATSNotifier) Notify(_ context.Context, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.conn.Publish(SubjectDispatch, data); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
