package domain

import (
	"sort"
)

// ActionID identifies one registrable modal action.
type ActionID string

// Built-in actions.
const (
	ActionContact       ActionID = "contact"
	ActionDeleteStream  ActionID = "deleteStream"
	ActionDonate        ActionID = "donate"
	ActionCallOrder     ActionID = "callOrder"
	ActionCreateStream  ActionID = "createStream"
	ActionCreateComment ActionID = "createComment"
	ActionPayment       ActionID = "payment"
)

// FormData maps a field name to its current value.
// It is mutated exclusively through the active content strategy.
type FormData map[string]any

// Clone returns a shallow copy so a handler never observes later edits.
func (f FormData) Clone() FormData {
	out := make(FormData, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the field names in sorted order.
func (f FormData) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Button describes one modal control.
type Button struct {
	Label string `json:"label"`
}

// Buttons holds the optional primary and secondary controls supplied by the opener.
type Buttons struct {
	Primary   *Button `json:"primary,omitempty"`
	Secondary *Button `json:"secondary,omitempty"`
}

// OpenRequest is what a collaborator passes when opening the modal.
type OpenRequest struct {
	ActionID ActionID       `json:"action_id"`
	Title    string         `json:"title"`
	Buttons  Buttons        `json:"buttons"`
	Context  map[string]any `json:"context,omitempty"`
}

// Session is a read-only snapshot of the engine's current modal session.
type Session struct {
	ActionID   ActionID       `json:"action_id,omitempty"`
	Title      string         `json:"title,omitempty"`
	Buttons    Buttons        `json:"buttons"`
	Context    map[string]any `json:"context,omitempty"`
	Form       FormData       `json:"form,omitempty"`
	Submitting bool           `json:"submitting"`
	Generation uint64         `json:"generation"`
}

// Open reports whether the snapshot describes an open modal.
func (s Session) Open() bool {
	return s.ActionID != ""
}

// Messages are the literal templates used while tracking an asynchronous action.
type Messages struct {
	Pending string `json:"pending"`
	Success string `json:"success"`
	Error   string `json:"error"`
}
