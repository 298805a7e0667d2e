package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
)

// FallbackMessage is rendered when an action has no registered content.
const FallbackMessage = "No data available"

// ContentStrategy produces the editable form surface of an action.
type ContentStrategy interface {
	Render(form domain.FormData, set domain.FieldSetter) domain.View
}

// ContentFunc adapts a function to ContentStrategy.
type ContentFunc func(form domain.FormData, set domain.FieldSetter) domain.View

// Render implements ContentStrategy.
func (f ContentFunc) Render(form domain.FormData, set domain.FieldSetter) domain.View {
	return f(form, set)
}

// Fallback is the content used for lookup misses.
var Fallback ContentStrategy = ContentFunc(func(domain.FormData, domain.FieldSetter) domain.View {
	return domain.View{Body: FallbackMessage}
})

// Handler performs the mutation behind an action's primary button.
type Handler interface {
	// Validate checks the form and context synchronously. It must not do I/O.
	Validate(inv Invocation) error

	// Run dispatches the backend call and, on success, commits the cache mutation
	// through inv.Commit. It returns once the call settled.
	Run(ctx context.Context, inv Invocation) error
}

// Descriptor identifies one registrable action.
type Descriptor struct {
	ID       domain.ActionID
	Content  ContentStrategy
	Handler  Handler // nil for informational actions
	Messages domain.Messages
}

// Registry maps action identifiers to their descriptors.
type Registry struct {
	mu      sync.RWMutex
	actions map[domain.ActionID]Descriptor
}

// NewRegistry creates a registry holding the given descriptors.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		actions: make(map[domain.ActionID]Descriptor),
	}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an action to the registry.
// If an action with the same ID exists, it is overwritten.
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("register action: empty id")
	}
	if d.Content == nil {
		return fmt.Errorf("register action %s: content strategy is required", d.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[d.ID] = d
	return nil
}

// Lookup returns the descriptor of an action.
func (r *Registry) Lookup(id domain.ActionID) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.actions[id]
	return d, ok
}

// LookupContent returns the content strategy of an action, or Fallback.
func (r *Registry) LookupContent(id domain.ActionID) ContentStrategy {
	if d, ok := r.Lookup(id); ok {
		return d.Content
	}
	return Fallback
}

// LookupHandler returns the handler of an action. It reports false both for
// unknown actions and for informational actions without a handler.
func (r *Registry) LookupHandler(id domain.ActionID) (Handler, bool) {
	d, ok := r.Lookup(id)
	if !ok || d.Handler == nil {
		return nil, false
	}
	return d.Handler, true
}

// IDs returns the registered action identifiers in sorted order.
func (r *Registry) IDs() []domain.ActionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.ActionID, 0, len(r.actions))
	for id := range r.actions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
