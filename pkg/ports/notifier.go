package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// Ticket follows one tracked operation until it settles.
type Ticket interface {
	// ID is the notice ID shared by the pending and the settled notice.
	ID() string
	// Done is closed once the operation settled and the notice was replaced.
	Done() <-chan struct{}
	// Err returns the operation error after Done is closed.
	Err() error
	// Wait blocks until the operation settles or ctx is done.
	Wait(ctx context.Context) error
}

// Notifier displays transient user feedback.
type Notifier interface {
	// Success shows a success notice immediately.
	Success(message string) domain.Notice

	// Error shows an error notice immediately. Used for local failures that never reach the network.
	Error(message string) domain.Notice

	// Info shows an informational notice immediately.
	Info(message string) domain.Notice

	// Track shows msgs.Pending now and replaces it with msgs.Success or msgs.Error
	// once op returns. Tracked operations are independent of one another.
	Track(ctx context.Context, op func(context.Context) error, msgs domain.Messages) Ticket
}
