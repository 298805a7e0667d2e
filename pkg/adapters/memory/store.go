package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
)

// Store implements ports.FallbackStore in memory.
// Safe for concurrent use. Contents are lost when the process exits.
type Store struct {
	attempts []domain.Attempt
	mu       sync.RWMutex
}

// NewStore creates a new in-memory fallback store.
func NewStore() *Store {
	return &Store{}
}

// Append stores a copy of the attempt.
func (s *Store) Append(ctx context.Context, attempt domain.Attempt) error {
	if attempt.ID == "" {
		return fmt.Errorf("attempt id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.attempts {
		if a.ID == attempt.ID {
			return fmt.Errorf("append attempt %s: %w", attempt.ID, domain.ErrDuplicateID)
		}
	}
	s.attempts = append(s.attempts, clone(attempt))
	return nil
}

// Latest returns the most recently appended attempt of the given kind.
func (s *Store) Latest(ctx context.Context, kind domain.AttemptKind) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.attempts) - 1; i >= 0; i-- {
		if s.attempts[i].Kind == kind {
			return clone(s.attempts[i]), nil
		}
	}
	return domain.Attempt{}, domain.ErrAttemptNotFound
}

// List returns the attempts of the given kind in append order.
func (s *Store) List(ctx context.Context, kind domain.AttemptKind) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Attempt, 0)
	for _, a := range s.attempts {
		if a.Kind == kind {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

// Delete removes the attempt.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.attempts {
		if a.ID == id {
			s.attempts = append(s.attempts[:i], s.attempts[i+1:]...)
			return nil
		}
	}
	return domain.ErrAttemptNotFound
}

// clone copies the payload so callers can't mutate stored bytes through a shared slice.
func clone(a domain.Attempt) domain.Attempt {
	a.Payload = append([]byte(nil), a.Payload...)
	return a
}
