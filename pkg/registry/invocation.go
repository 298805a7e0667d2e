package registry

import (
	"github.com/aretw0/storefront/pkg/domain"
)

// Invocation is what a handler closes over when the primary button is activated:
// a snapshot of the form and the opener's context data.
type Invocation struct {
	ActionID domain.ActionID
	Form     domain.FormData
	Context  map[string]any

	live func() bool
}

// NewInvocation builds an invocation. live reports whether results of this
// invocation may still be applied to the cache; nil means always.
func NewInvocation(id domain.ActionID, form domain.FormData, ctx map[string]any, live func() bool) Invocation {
	if form == nil {
		form = domain.FormData{}
	}
	if ctx == nil {
		ctx = map[string]any{}
	}
	return Invocation{ActionID: id, Form: form, Context: ctx, live: live}
}

// Commit applies mutate unless the invocation's session was superseded.
// It reports whether the mutation ran.
func (inv Invocation) Commit(mutate func() error) (bool, error) {
	if inv.live != nil && !inv.live() {
		return false, nil
	}
	return true, mutate()
}

// ContextString resolves a string from the context data. The path may be a flat
// key ("product_id") or a nested "object.field" pair ("product.id").
func (inv Invocation) ContextString(path ...string) string {
	for _, p := range path {
		if s := lookupString(inv.Context, p); s != "" {
			return s
		}
	}
	return ""
}

func lookupString(data map[string]any, path string) string {
	if v, ok := data[path]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	for i := 0; i < len(path); i++ {
		if path[i] != '.' {
			continue
		}
		nested, ok := data[path[:i]]
		if !ok {
			return ""
		}
		switch m := nested.(type) {
		case map[string]any:
			return lookupString(m, path[i+1:])
		case map[string]string:
			return m[path[i+1:]]
		case domain.Product:
			switch path[i+1:] {
			case "id", "_id":
				return m.ID
			}
		case domain.Stream:
			switch path[i+1:] {
			case "id", "_id":
				return m.ID
			case "remote_id":
				return m.RemoteID
			case "product_id":
				return m.ProductID
			}
		}
		return ""
	}
	return ""
}
