package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/internal/runtime"
	"github.com/aretw0/storefront/pkg/actions"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/cache"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/notify"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/registry"
)

// Version is the library version reported by the CLI and the adapters.
var Version = "0.1.0"

// LatePolicy re-exports the engine policy for results of superseded sessions.
type LatePolicy = runtime.LatePolicy

const (
	DropSuperseded = runtime.DropSuperseded
	ApplyLate      = runtime.ApplyLate
)

// retryLockTTL bounds how long one replay may hold the attempt lock.
const retryLockTTL = 30 * time.Second

// Client is the high-level entry point of the library. It wires the modal engine,
// the action registry, the notification channel and the entity cache.
type Client struct {
	engine   *runtime.Engine
	registry *registry.Registry
	notices  *notify.Channel
	cache    *cache.Store

	services   ports.Services
	fallback   ports.FallbackStore
	locker     ports.Locker
	contact    actions.ContactInfo
	hooks      domain.LifecycleHooks
	latePolicy LatePolicy
	keepOpen   bool
	maxNotices int
	extra      []registry.Descriptor
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithServices injects the backend collaborators. Actions whose service is
// missing are registered without a handler.
func WithServices(s ports.Services) Option {
	return func(c *Client) {
		c.services = s
	}
}

// WithFallback sets where rejected reviews are kept. Defaults to an in-memory store.
func WithFallback(store ports.FallbackStore) Option {
	return func(c *Client) {
		c.fallback = store
	}
}

// WithLocker serialises replays of the same attempt across processes.
func WithLocker(l ports.Locker) Option {
	return func(c *Client) {
		c.locker = l
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLatePolicy sets how results of superseded sessions are applied.
func WithLatePolicy(p LatePolicy) Option {
	return func(c *Client) {
		c.latePolicy = p
	}
}

// WithKeepOpenOnInvalid keeps the modal open when validation fails.
func WithKeepOpenOnInvalid(keep bool) Option {
	return func(c *Client) {
		c.keepOpen = keep
	}
}

// WithContact sets the support contact shown by the contact action.
func WithContact(info actions.ContactInfo) Option {
	return func(c *Client) {
		c.contact = info
	}
}

// WithMaxNotices caps how many settled notices are retained.
func WithMaxNotices(n int) Option {
	return func(c *Client) {
		c.maxNotices = n
	}
}

// WithAction registers an extra action next to the built-in ones.
// A descriptor with a built-in ID replaces it.
func WithAction(d registry.Descriptor) Option {
	return func(c *Client) {
		c.extra = append(c.extra, d)
	}
}

// New initializes a Client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		contact:    actions.DefaultContact,
		maxNotices: notify.DefaultMaxVisible,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.fallback == nil {
		c.fallback = memory.NewStore()
	}

	c.cache = cache.New(cache.WithLogger(c.logger))
	c.notices = notify.New(
		notify.WithLogger(c.logger),
		notify.WithMaxVisible(c.maxNotices),
	)

	reg, err := actions.NewRegistry(actions.Deps{
		Services: c.services,
		Store:    c.cache,
		Fallback: c.fallback,
		Contact:  c.contact,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	for _, d := range c.extra {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	c.registry = reg

	c.engine = runtime.NewEngine(reg, c.notices,
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
		runtime.WithLatePolicy(c.latePolicy),
		runtime.WithKeepOpenOnInvalid(c.keepOpen),
	)
	return c, nil
}

// Open opens the modal for an action. A modal that is already open is replaced.
func (c *Client) Open(ctx context.Context, req domain.OpenRequest) (domain.Session, error) {
	return c.engine.Open(ctx, req)
}

// Edit writes one form value through the action's content strategy.
func (c *Client) Edit(field string, value any) error {
	return c.engine.Edit(field, value)
}

// Render returns the form surface of the open modal.
func (c *Client) Render() (domain.View, error) {
	return c.engine.Render()
}

// Submit activates the primary button. See ports.ModalEngine.
func (c *Client) Submit(ctx context.Context) (ports.Ticket, error) {
	return c.engine.Submit(ctx)
}

// Close dismisses the modal without running any handler.
func (c *Client) Close() {
	c.engine.Close()
}

// State returns a snapshot of the current session.
func (c *Client) State() domain.Session {
	return c.engine.State()
}

var _ ports.ModalEngine = (*Client)(nil)

// Registry returns the action registry.
func (c *Client) Registry() *registry.Registry { return c.registry }

// Notices returns the notification channel.
func (c *Client) Notices() *notify.Channel { return c.notices }

// Cache returns the entity cache.
func (c *Client) Cache() *cache.Store { return c.cache }

// Fallback returns the store of rejected submissions.
func (c *Client) Fallback() ports.FallbackStore { return c.fallback }

// Bootstrap loads the current user and the stream list into the cache.
// Missing services are skipped. Both loads are attempted; their errors are joined.
func (c *Client) Bootstrap(ctx context.Context) error {
	var errs []error

	if c.services.Profile != nil {
		user, err := c.services.Profile.Profile(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("load profile: %w", err))
		} else {
			c.cache.SetCurrentUser(user)
		}
	}
	if c.services.Streams != nil {
		streams, err := c.services.Streams.ListStreams(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("load streams: %w", err))
		} else {
			c.cache.ReplaceStreams(streams)
		}
	}

	c.logger.Debug("Bootstrapped entity cache", "streams", len(c.cache.Streams()), "errors", len(errs))
	return errors.Join(errs...)
}

// PendingComments lists the rejected reviews kept for retry, oldest first.
func (c *Client) PendingComments(ctx context.Context) ([]domain.Attempt, error) {
	return c.fallback.List(ctx, domain.AttemptComment)
}

// RetryComment posts a kept review again under a tracked notice. The replay
// claims the attempt while holding the retry lock, so concurrent retries of one
// attempt post it once; the loser settles with ErrAttemptNotFound. A rejected
// replay puts the attempt back.
func (c *Client) RetryComment(ctx context.Context, id string) (ports.Ticket, error) {
	if c.services.Comments == nil {
		return nil, fmt.Errorf("retry %s: comment service is not configured", id)
	}
	attempt, err := c.findAttempt(ctx, id)
	if err != nil {
		return nil, err
	}

	comments := c.services.Comments
	op := func(ctx context.Context) error {
		if c.locker != nil {
			unlock, err := c.locker.Lock(ctx, "retry:"+attempt.ID, retryLockTTL)
			if err != nil {
				return err
			}
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					c.logger.Warn("Failed to release retry lock", "attempt_id", attempt.ID, "err", err)
				}
			}()
		}
		return actions.ReplayComment(ctx, comments, c.fallback, attempt)
	}
	return c.notices.Track(context.WithoutCancel(ctx), op, actions.CreateCommentMessages), nil
}

// DropAttempt discards a kept submission without replaying it.
func (c *Client) DropAttempt(ctx context.Context, id string) error {
	if err := c.fallback.Delete(ctx, id); err != nil {
		return fmt.Errorf("drop attempt %s: %w", id, err)
	}
	return nil
}

func (c *Client) findAttempt(ctx context.Context, id string) (domain.Attempt, error) {
	list, err := c.PendingComments(ctx)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("list attempts: %w", err)
	}
	for _, a := range list {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Attempt{}, fmt.Errorf("retry %s: %w", id, domain.ErrAttemptNotFound)
}

// Shutdown waits for tracked calls to settle, then closes the fallback store if
// it holds resources.
func (c *Client) Shutdown(ctx context.Context) error {
	c.engine.Close()
	err := c.notices.Drain(ctx)
	if closer, ok := c.fallback.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close fallback: %w", cerr))
		}
	}
	return err
}
