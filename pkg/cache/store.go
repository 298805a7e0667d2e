// Package cache holds the client-side entity cache: the single source of truth the
// rest of the client reads from. It is an explicitly owned container injected into
// the engine and its handlers; mutations go only through Insert, RemoveByID and
// PatchCurrentUser, each applied as one atomic step.
package cache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// Store implements ports.EntityStore. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	streams []domain.Stream // newest first
	user    *domain.User
	version uint64

	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty entity cache.
func New(opts ...Option) *Store {
	s := &Store{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.EntityStore = (*Store)(nil)

// Insert puts a new stream at the top of the list.
func (s *Store) Insert(stream domain.Stream) error {
	if stream.ID == "" {
		return fmt.Errorf("insert stream: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.streams {
		if existing.ID == stream.ID {
			return fmt.Errorf("insert stream %s: %w", stream.ID, domain.ErrDuplicateID)
		}
	}

	s.streams = append([]domain.Stream{stream}, s.streams...)
	s.version++
	s.logger.Debug("Stream inserted", "stream_id", stream.ID, "is_new", stream.IsNew)
	return nil
}

// RemoveByID removes the stream with the given cache ID.
func (s *Store) RemoveByID(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.streams {
		if existing.ID == id {
			s.streams = append(s.streams[:i:i], s.streams[i+1:]...)
			s.version++
			s.logger.Debug("Stream removed", "stream_id", id)
			return true
		}
	}
	return false
}

// PatchCurrentUser replaces the patched fields of the current user.
func (s *Store) PatchCurrentUser(patch domain.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return domain.ErrNoCurrentUser
	}
	patched := patch.Apply(*s.user)
	s.user = &patched
	s.version++
	return nil
}

// ReplaceStreams loads the stream list fetched from the backend.
func (s *Store) ReplaceStreams(streams []domain.Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.streams = append([]domain.Stream(nil), streams...)
	s.version++
}

// SetCurrentUser loads the signed-in user.
func (s *Store) SetCurrentUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &user
	s.version++
}

// Streams returns a copy of the cached streams, newest first.
func (s *Store) Streams() []domain.Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Stream(nil), s.streams...)
}

// Stream returns one cached stream.
func (s *Store) Stream(id string) (domain.Stream, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.streams {
		if st.ID == id {
			return st, true
		}
	}
	return domain.Stream{}, false
}

// CurrentUser returns the signed-in user, if loaded.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Version increases on every mutation. Readers use it to detect changes cheaply.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
