package notify

import (
	"context"
)

// Ticket implements ports.Ticket for operations started with Channel.Track.
type Ticket struct {
	id   string
	done chan struct{}
	err  error
}

// ID returns the ID of the tracked notice.
func (t *Ticket) ID() string { return t.id }

// Done is closed once the notice settled.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Err returns the operation error. It is only meaningful after Done is closed.
func (t *Ticket) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the operation settles and returns its error.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
