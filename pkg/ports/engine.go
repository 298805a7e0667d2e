package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// ModalEngine is the opener-side API of the modal action engine.
// It is the interface used by adapters (HTTP, MCP, terminal).
type ModalEngine interface {
	// Open starts a session, replacing any open one.
	Open(ctx context.Context, req domain.OpenRequest) (domain.Session, error)

	// Edit writes one field through the active content strategy.
	Edit(field string, value any) error

	// Render returns the view of the active action.
	Render() (domain.View, error)

	// Submit activates the primary button. It returns the tracking ticket of the
	// dispatched call, or nil when nothing was dispatched.
	Submit(ctx context.Context) (Ticket, error)

	// Close discards the session without invoking any handler.
	Close()

	// State returns a snapshot of the current session.
	State() domain.Session
}
