package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionOpen  EventType = "session_open"
	EventSessionClose EventType = "session_close"
	EventActionSubmit EventType = "action_submit"
	EventActionSettle EventType = "action_settle"
)

// CloseReason tells why a session ended.
type CloseReason string

const (
	CloseCancel     CloseReason = "cancel"
	CloseSubmit     CloseReason = "submit"
	CloseSuperseded CloseReason = "superseded"
)

// Outcome is the final result of one submission.
type Outcome string

const (
	OutcomeInvalid Outcome = "invalid"
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeNoop    Outcome = "noop"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	Generation uint64    `json:"generation"`
}

// SessionEvent represents a modal session opening or closing.
type SessionEvent struct {
	EventBase
	ActionID ActionID    `json:"action_id"`
	Reason   CloseReason `json:"reason,omitempty"`
}

// ActionEvent represents a submission and, once settled, its outcome.
type ActionEvent struct {
	EventBase
	ActionID ActionID      `json:"action_id"`
	Outcome  Outcome       `json:"outcome,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnOpen   func(context.Context, *SessionEvent)
	OnClose  func(context.Context, *SessionEvent)
	OnSubmit func(context.Context, *ActionEvent)
	OnSettle func(context.Context, *ActionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnOpen:   chainSession(h.OnOpen, other.OnOpen),
		OnClose:  chainSession(h.OnClose, other.OnClose),
		OnSubmit: chainAction(h.OnSubmit, other.OnSubmit),
		OnSettle: chainAction(h.OnSettle, other.OnSettle),
	}
}

func chainSession(a, b func(context.Context, *SessionEvent)) func(context.Context, *SessionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *SessionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainAction(a, b func(context.Context, *ActionEvent)) func(context.Context, *ActionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *ActionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
