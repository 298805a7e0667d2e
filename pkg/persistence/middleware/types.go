// Package middleware wraps a fallback store with payload encryption and
// redaction of stored failure reasons.
package middleware

import "github.com/aretw0/storefront/pkg/ports"

// Middleware allows wrapping a FallbackStore to add behavior.
type Middleware func(ports.FallbackStore) ports.FallbackStore

// Chain applies the middlewares so that the first one is the outermost.
func Chain(store ports.FallbackStore, mws ...Middleware) ports.FallbackStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
