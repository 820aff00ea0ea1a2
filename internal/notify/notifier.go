// Package notify delivers best-effort notifications for moderation
// outcomes. Delivery runs on a background worker; failures are logged and
// never surfaced to the moderation path, so moderation correctness does not
// depend on a mail server's availability.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sender delivers one event over one channel (email, Slack ops feed, ...).
type Sender interface {
	Send(ctx context.Context, e Event) error
}

// Dispatcher fans events out to its senders from a single background
// worker. Enqueue never blocks the caller: when the buffer is full, or the
// dispatcher has been closed, the event is dropped with a log line.
type Dispatcher struct {
	ch      chan Event
	senders []Sender

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts a Dispatcher with the given buffer size and senders.
func NewDispatcher(buffer int, senders ...Sender) *Dispatcher {
	d := &Dispatcher{
		ch:      make(chan Event, buffer),
		senders: senders,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Enqueue hands an event to the background worker. Never blocks. The mutex
// orders Enqueue against Close so nothing sends on the closed channel.
func (d *Dispatcher) Enqueue(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		log.Warn().
			Str("event", string(e.Type)).
			Str("account_id", e.AccountID.String()).
			Msg("notify: dispatcher closed, event dropped")
		return
	}

	select {
	case d.ch <- e:
	default:
		log.Warn().
			Str("event", string(e.Type)).
			Str("account_id", e.AccountID.String()).
			Msg("notify: buffer full, event dropped")
	}
}

// Close stops accepting events and waits for the worker to drain the
// buffer. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	ctx := context.Background()
	for e := range d.ch {
		for _, s := range d.senders {
			if err := s.Send(ctx, e); err != nil {
				log.Error().
					Err(err).
					Str("event", string(e.Type)).
					Str("account_id", e.AccountID.String()).
					Msg("notify: send failed")
			}
		}
	}
}
