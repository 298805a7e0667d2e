package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// EntityStore is the mutation contract the engine consumes from the entity cache.
// Handlers never write entity fields directly; every change goes through these calls.
type EntityStore interface {
	// Insert adds a new stream. Returns domain.ErrDuplicateID if the ID is already cached.
	Insert(stream domain.Stream) error

	// RemoveByID removes the stream with the given ID and reports whether one was removed.
	RemoveByID(id string) bool

	// PatchCurrentUser replaces the patched fields of the current user record.
	// Returns domain.ErrNoCurrentUser if no user was loaded.
	PatchCurrentUser(patch domain.UserPatch) error
}

// FallbackStore keeps failed mutation payloads in durable storage for manual retry.
// It is an append-only queue keyed by attempt ID: a new failure never erases an older one.
type FallbackStore interface {
	// Append stores the attempt. The attempt ID must be unique.
	Append(ctx context.Context, attempt domain.Attempt) error

	// Latest returns the newest attempt of the given kind.
	// Returns domain.ErrAttemptNotFound if there is none.
	Latest(ctx context.Context, kind domain.AttemptKind) (domain.Attempt, error)

	// List returns every attempt of the given kind, oldest first.
	List(ctx context.Context, kind domain.AttemptKind) ([]domain.Attempt, error)

	// Delete removes one attempt. Returns domain.ErrAttemptNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}
