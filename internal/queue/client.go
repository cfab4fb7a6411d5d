package queue

import "context"

// Client hands verification jobs to a queue backend. The SQS implementation
// is the production one; callers fall back to in-process execution when no
// queue is configured.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
