// Package redis keeps fallback attempts in Redis, so every client instance of a
// user sees the same retry queue.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.FallbackStore using Redis.
// Each attempt is a JSON string key; a sorted set per kind keeps the append order.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.FallbackStore = (*Store)(nil)

type Option func(*Store)

// WithTTL sets the expiration of stored attempts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "storefront:fallback:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + "attempt:" + id
}

func (s *Store) indexKey(kind domain.AttemptKind) string {
	return s.prefix + "kind:" + string(kind)
}

func (s *Store) seqKey() string {
	return s.prefix + "seq"
}

// Append stores the attempt and indexes it under its kind.
func (s *Store) Append(ctx context.Context, attempt domain.Attempt) error {
	if attempt.ID == "" {
		return fmt.Errorf("attempt id is required")
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(attempt.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	if !ok {
		return fmt.Errorf("append attempt %s: %w", attempt.ID, domain.ErrDuplicateID)
	}

	// Score is a global counter so attempts created in the same instant keep their order.
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}
	if err := s.client.ZAdd(ctx, s.indexKey(attempt.Kind), backend.Z{
		Score:  float64(seq),
		Member: attempt.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index attempt: %w", err)
	}
	return nil
}

// Latest returns the newest attempt of kind. Index entries of expired attempts are pruned.
func (s *Store) Latest(ctx context.Context, kind domain.AttemptKind) (domain.Attempt, error) {
	for {
		ids, err := s.client.ZRevRange(ctx, s.indexKey(kind), 0, 0).Result()
		if err != nil {
			return domain.Attempt{}, fmt.Errorf("failed to read index: %w", err)
		}
		if len(ids) == 0 {
			return domain.Attempt{}, domain.ErrAttemptNotFound
		}

		a, err := s.load(ctx, ids[0])
		if errors.Is(err, domain.ErrAttemptNotFound) {
			if err := s.client.ZRem(ctx, s.indexKey(kind), ids[0]).Err(); err != nil {
				return domain.Attempt{}, fmt.Errorf("failed to prune index: %w", err)
			}
			continue
		}
		return a, err
	}
}

// List returns every live attempt of kind, oldest first.
func (s *Store) List(ctx context.Context, kind domain.AttemptKind) ([]domain.Attempt, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var (
		out   []domain.Attempt
		stale []any
	)
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var a domain.Attempt
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attempt %s: %w", ids[i], err)
		}
		out = append(out, a)
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(kind), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune index: %w", err)
		}
	}
	return out, nil
}

// Delete removes the attempt and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(a.Kind), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}
	// Only the caller whose DEL removed the key owns the attempt.
	if del.Val() == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

func (s *Store) load(ctx context.Context, id string) (domain.Attempt, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.Attempt{}, domain.ErrAttemptNotFound
		}
		return domain.Attempt{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var a domain.Attempt
	if err := json.Unmarshal([]byte(val), &a); err != nil {
		return domain.Attempt{}, fmt.Errorf("failed to unmarshal attempt: %w", err)
	}
	return a, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
