package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/registry"
)

// LatePolicy decides what happens to results that settle after their session was superseded.
type LatePolicy int

const (
	// DropSuperseded skips the cache mutation of a call whose session was replaced
	// by a newer one. Its notice still settles, followed by StaleResultMessage.
	DropSuperseded LatePolicy = iota
	// ApplyLate always applies the cache mutation.
	ApplyLate
)

// StaleResultMessage is shown after a call succeeded but its cache update was
// skipped because a newer session had been opened.
const StaleResultMessage = "Saved. Another window was opened meanwhile, reload to see the change."

func (p LatePolicy) String() string {
	if p == ApplyLate {
		return "apply"
	}
	return "drop"
}

// Engine is the modal action engine. It owns at most one session at a time and
// dispatches submissions through the registry. Safe for concurrent use.
type Engine struct {
	registry *registry.Registry
	notifier ports.Notifier

	logger            *slog.Logger
	hooks             domain.LifecycleHooks
	latePolicy        LatePolicy
	keepOpenOnInvalid bool
	now               func() time.Time

	mu         sync.Mutex
	session    domain.Session // zero ActionID while closed
	generation uint64
	inflight   map[uint64]int
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLatePolicy sets how results of superseded sessions are applied.
func WithLatePolicy(p LatePolicy) Option {
	return func(e *Engine) {
		e.latePolicy = p
	}
}

// WithKeepOpenOnInvalid keeps the modal open when validation fails, so the user can
// fix the form. By default the modal closes as soon as the primary button is pressed.
func WithKeepOpenOnInvalid(keep bool) Option {
	return func(e *Engine) {
		e.keepOpenOnInvalid = keep
	}
}

// WithClock overrides the time source used for events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine dispatching through reg and reporting through notifier.
func NewEngine(reg *registry.Registry, notifier ports.Notifier, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		notifier: notifier,
		logger:   logging.NewNop(),
		now:      time.Now,
		inflight: make(map[uint64]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ ports.ModalEngine = (*Engine)(nil)

// Open starts a session for req, replacing any open one. The form always starts empty.
func (e *Engine) Open(ctx context.Context, req domain.OpenRequest) (domain.Session, error) {
	if req.ActionID == "" {
		return domain.Session{}, fmt.Errorf("open modal: empty action id")
	}

	e.mu.Lock()
	previous := e.session
	e.generation++
	e.session = domain.Session{
		ActionID:   req.ActionID,
		Title:      req.Title,
		Buttons:    req.Buttons,
		Context:    cloneContext(req.Context),
		Form:       domain.FormData{},
		Generation: e.generation,
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	if previous.Open() {
		e.emitClose(ctx, previous, domain.CloseSuperseded)
	}
	if _, ok := e.registry.Lookup(req.ActionID); !ok {
		e.logger.Warn("Opened modal for unregistered action", "action_id", req.ActionID)
	}
	e.logger.Debug("Modal opened", "action_id", req.ActionID, "generation", snapshot.Generation)
	if e.hooks.OnOpen != nil {
		e.hooks.OnOpen(ctx, &domain.SessionEvent{
			EventBase: e.event(domain.EventSessionOpen, snapshot.Generation),
			ActionID:  req.ActionID,
		})
	}
	return snapshot, nil
}

// Edit writes one field through the active content strategy.
func (e *Engine) Edit(field string, value any) error {
	view, err := e.Render()
	if err != nil {
		return err
	}
	return view.Set(field, value)
}

// Render returns the view of the active action, or the fallback view for actions
// without registered content. The view's setters are bound to the current session:
// once it is closed or replaced they are ignored.
func (e *Engine) Render() (domain.View, error) {
	e.mu.Lock()
	if !e.session.Open() {
		e.mu.Unlock()
		return domain.View{}, domain.ErrNoSession
	}
	id := e.session.ActionID
	gen := e.session.Generation
	form := e.session.Form.Clone()
	e.mu.Unlock()

	return e.registry.LookupContent(id).Render(form, e.setter(gen)), nil
}

func (e *Engine) setter(gen uint64) domain.FieldSetter {
	return func(field string, value any) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.session.Open() || e.session.Generation != gen {
			e.logger.Debug("Dropped edit for stale session", "field", field, "generation", gen)
			return
		}
		e.session.Form[field] = value
	}
}

// Submit activates the primary button.
//
// Without a handler nothing happens and the modal stays open. Otherwise the modal
// closes, the form is validated and, if valid, the handler runs on its own
// goroutine under a tracked notice. Validation failures are reported both as an
// error notice and as the returned error.
func (e *Engine) Submit(ctx context.Context) (ports.Ticket, error) {
	e.mu.Lock()
	if !e.session.Open() {
		e.mu.Unlock()
		return nil, domain.ErrNoSession
	}
	session := e.session
	desc, _ := e.registry.Lookup(session.ActionID)
	handler, ok := e.registry.LookupHandler(session.ActionID)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("Submit ignored, action has no handler", "action_id", session.ActionID)
		e.emitSettle(ctx, session, domain.OutcomeNoop, 0, nil)
		return nil, nil
	}

	gen := session.Generation
	var dropped atomic.Bool
	inv := registry.NewInvocation(session.ActionID, session.Form.Clone(), cloneContext(session.Context), e.live(gen, &dropped))
	if !e.keepOpenOnInvalid {
		e.session = domain.Session{}
	}
	e.mu.Unlock()

	if !e.keepOpenOnInvalid {
		e.emitClose(ctx, session, domain.CloseSubmit)
	}

	if err := handler.Validate(inv); err != nil {
		e.notifier.Error(domain.NoticeOf(err, desc.Messages.Error))
		e.logger.Debug("Submit rejected by validation", "action_id", session.ActionID, "err", err)
		e.emitSettle(ctx, session, domain.OutcomeInvalid, 0, err)
		if !errors.Is(err, domain.ErrValidation) {
			err = fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		return nil, fmt.Errorf("submit %s: %w", session.ActionID, err)
	}

	e.mu.Lock()
	if e.keepOpenOnInvalid && e.session.Open() && e.session.Generation == gen {
		e.session = domain.Session{}
		e.mu.Unlock()
		e.emitClose(ctx, session, domain.CloseSubmit)
		e.mu.Lock()
	}
	e.inflight[gen]++
	e.mu.Unlock()

	if e.hooks.OnSubmit != nil {
		e.hooks.OnSubmit(ctx, &domain.ActionEvent{
			EventBase: e.event(domain.EventActionSubmit, gen),
			ActionID:  session.ActionID,
		})
	}

	// The call outlives the request that triggered it.
	opCtx := context.WithoutCancel(ctx)
	ticket := e.notifier.Track(opCtx, func(ctx context.Context) (err error) {
		start := e.now()
		defer func() {
			e.mu.Lock()
			if e.inflight[gen]--; e.inflight[gen] <= 0 {
				delete(e.inflight, gen)
			}
			e.mu.Unlock()

			outcome := domain.OutcomeSuccess
			if err != nil {
				outcome = domain.OutcomeError
			}
			e.emitSettle(ctx, session, outcome, e.now().Sub(start), err)
		}()
		if err := handler.Run(ctx, inv); err != nil {
			return err
		}
		if dropped.Load() {
			e.notifier.Info(StaleResultMessage)
		}
		return nil
	}, desc.Messages)

	e.logger.Debug("Action dispatched", "action_id", session.ActionID, "notice_id", ticket.ID(), "generation", gen)
	return ticket, nil
}

// Close discards the open session without invoking any handler.
func (e *Engine) Close() {
	e.mu.Lock()
	session := e.session
	e.session = domain.Session{}
	e.mu.Unlock()

	if session.Open() {
		e.emitClose(context.Background(), session, domain.CloseCancel)
	}
}

// State returns a snapshot of the current session.
func (e *Engine) State() domain.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() domain.Session {
	s := e.session
	s.Form = s.Form.Clone()
	s.Context = cloneContext(s.Context)
	s.Generation = e.generation
	s.Submitting = e.inflight[e.generation] > 0
	return s
}

// live reports whether results of generation gen may still touch the cache.
// A refused commit is recorded in dropped.
func (e *Engine) live(gen uint64, dropped *atomic.Bool) func() bool {
	if e.latePolicy == ApplyLate {
		return nil
	}
	return func() bool {
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if current != gen {
			dropped.Store(true)
			e.logger.Info("Result of superseded session not applied to cache", "generation", gen, "current", current)
			return false
		}
		return true
	}
}

func (e *Engine) event(t domain.EventType, gen uint64) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, Generation: gen}
}

func (e *Engine) emitClose(ctx context.Context, s domain.Session, reason domain.CloseReason) {
	e.logger.Debug("Modal closed", "action_id", s.ActionID, "reason", reason)
	if e.hooks.OnClose != nil {
		e.hooks.OnClose(ctx, &domain.SessionEvent{
			EventBase: e.event(domain.EventSessionClose, s.Generation),
			ActionID:  s.ActionID,
			Reason:    reason,
		})
	}
}

func (e *Engine) emitSettle(ctx context.Context, s domain.Session, outcome domain.Outcome, d time.Duration, err error) {
	if outcome == domain.OutcomeError {
		e.logger.Warn("Action failed", "action_id", s.ActionID, "err", err)
	}
	if e.hooks.OnSettle != nil {
		e.hooks.OnSettle(ctx, &domain.ActionEvent{
			EventBase: e.event(domain.EventActionSettle, s.Generation),
			ActionID:  s.ActionID,
			Outcome:   outcome,
			Duration:  d,
			Err:       err,
		})
	}
}

func cloneContext(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
