package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work across client instances, such as replaying one fallback attempt.
type Locker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// ttl bounds how long a crashed holder can keep it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
