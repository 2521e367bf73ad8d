package notification

import (
	"context"
	"sync"
)

// Recorder keeps sent messages in memory. Err, when set, is returned from
// every Send after the message is recorded as attempted.
type Recorder struct {
	mu       sync.Mutex
	sent     []Message
	attempts int
	Err      error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, cloneMessage(msg))
	return nil
}

// Sent returns a copy of the successfully sent messages in send order.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	for i, m := range r.sent {
		out[i] = cloneMessage(m)
	}
	return out
}

// Attempts counts every Send call, failed or not.
func (r *Recorder) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

func cloneMessage(m Message) Message {
	m.To = append([]string(nil), m.To...)
	return m
}
