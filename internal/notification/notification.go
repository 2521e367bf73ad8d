// Package notification delivers account emails.
//
// Senders are transports (SMTP, Kafka, log). The Dispatcher runs sends on a
// bounded worker pool so callers enqueue and move on. Delivery is at most
// once: a message is attempted a single time and failures are logged and
// counted, never retried.
package notification

import (
	"context"
	"errors"
)

// Message is a single outbound email.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Sender hands a message to a transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	// ErrQueueFull is reported when the dispatcher has no room for a message.
	ErrQueueFull = errors.New("notification queue full")
	// ErrStopped is reported for messages enqueued after, or still queued at,
	// dispatcher shutdown.
	ErrStopped = errors.New("notification dispatcher stopped")
	// ErrNoRecipients rejects messages without an address.
	ErrNoRecipients = errors.New("notification has no recipients")
)
