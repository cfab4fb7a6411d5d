package notifications

import (
	"context"
	"sync"
)

// MemoryNotifier records requests in memory. Used when NATS_URL is unset
// and in tests.
type MemoryNotifier struct {
	mu   sync.Mutex
	sent []Request
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (m *MemoryNotifier) Notify(_ context.Context, req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	return nil
}

// Sent returns a copy of everything recorded so far.
func (m *MemoryNotifier) Sent() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.sent))
	copy(out, m.sent)
	return out
}
