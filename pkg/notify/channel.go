package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/google/uuid"
)

// DefaultMaxVisible is how many notices are kept when no limit is configured.
const DefaultMaxVisible = 20

// Channel implements ports.Notifier. Safe for concurrent use.
type Channel struct {
	mu      sync.Mutex
	notices []domain.Notice // oldest first
	subs    map[int]chan domain.Notice
	nextSub int

	inflight sync.WaitGroup

	maxVisible int
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures the Channel.
type Option func(*Channel)

// WithLogger configures a logger for the Channel.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// WithMaxVisible caps how many notices are retained. Pending notices are never evicted.
func WithMaxVisible(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.maxVisible = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) {
		c.now = now
	}
}

// New creates an empty notification channel.
func New(opts ...Option) *Channel {
	c := &Channel{
		subs:       make(map[int]chan domain.Notice),
		maxVisible: DefaultMaxVisible,
		now:        time.Now,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.Notifier = (*Channel)(nil)

// Success shows a success notice.
func (c *Channel) Success(message string) domain.Notice {
	return c.push(domain.NoticeSuccess, message)
}

// Error shows an error notice.
func (c *Channel) Error(message string) domain.Notice {
	return c.push(domain.NoticeError, message)
}

// Info shows an informational notice.
func (c *Channel) Info(message string) domain.Notice {
	return c.push(domain.NoticeInfo, message)
}

// Track runs op on its own goroutine and follows it with a pending notice.
// There is no timeout: if op never returns, the notice stays pending.
func (c *Channel) Track(ctx context.Context, op func(context.Context) error, msgs domain.Messages) ports.Ticket {
	n := c.push(domain.NoticePending, msgs.Pending)
	t := &Ticket{id: n.ID, done: make(chan struct{})}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		err := run(ctx, op)
		if err != nil {
			c.replace(n.ID, domain.NoticeError, domain.NoticeOf(err, msgs.Error))
			c.logger.Debug("Tracked operation failed", "notice_id", n.ID, "err", err)
		} else {
			c.replace(n.ID, domain.NoticeSuccess, msgs.Success)
		}

		t.err = err
		close(t.done)
	}()

	return t
}

// run calls op, turning a panic into an error so the notice always settles.
func run(ctx context.Context, op func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tracked operation panicked: %v", r)
		}
	}()
	return op(ctx)
}

// Drain blocks until every tracked operation settled or ctx is done.
func (c *Channel) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notices returns the retained notices, newest first.
func (c *Channel) Notices() []domain.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Notice, len(c.notices))
	for i, n := range c.notices {
		out[len(c.notices)-1-i] = n
	}
	return out
}

// Get returns the notice with the given ID.
func (c *Channel) Get(id string) (domain.Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.notices {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Notice{}, false
}

// Dismiss removes a notice and reports whether it existed.
// Dismissing a pending notice hides it; its settlement shows up again.
func (c *Channel) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribe returns a channel receiving every new or replaced notice.
// Slow subscribers miss updates rather than block the channel.
// The returned function unsubscribes and closes the channel.
func (c *Channel) Subscribe(buffer int) (<-chan domain.Notice, func()) {
	ch := make(chan domain.Notice, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *Channel) push(kind domain.NoticeKind, message string) domain.Notice {
	now := c.now()
	n := domain.Notice{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.notices = append(c.notices, n)
	c.evict()
	c.publish(n)
	return n
}

// replace swaps the kind and message of a notice in one step.
func (c *Channel) replace(id string, kind domain.NoticeKind, message string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.notices {
		if c.notices[i].ID == id {
			c.notices[i].Kind = kind
			c.notices[i].Message = message
			c.notices[i].UpdatedAt = now
			c.publish(c.notices[i])
			return
		}
	}

	// Dismissed while pending: show the outcome anyway.
	n := domain.Notice{ID: id, Kind: kind, Message: message, CreatedAt: now, UpdatedAt: now}
	c.notices = append(c.notices, n)
	c.evict()
	c.publish(n)
}

// evict drops the oldest settled notices above the cap. Caller holds c.mu.
func (c *Channel) evict() {
	for len(c.notices) > c.maxVisible {
		idx := -1
		for i, n := range c.notices {
			if n.Settled() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		c.notices = append(c.notices[:idx], c.notices[idx+1:]...)
	}
}

// publish fans out to subscribers without blocking. Caller holds c.mu.
func (c *Channel) publish(n domain.Notice) {
	for id, ch := range c.subs {
		select {
		case ch <- n:
		default:
			c.logger.Debug("Dropped notice for slow subscriber", "subscriber", id, "notice_id", n.ID)
		}
	}
}
