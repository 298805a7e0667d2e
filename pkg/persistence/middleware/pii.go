package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultReasonPatterns match phone numbers and e-mail addresses a backend may
// echo back in its error messages.
var DefaultReasonPatterns = []string{
	`\+?\d[\d\s()\-]{7,}\d`,
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
}

type piiMiddleware struct {
	next     ports.FallbackStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks matches of the patterns in the Reason of appended
// attempts. Payloads are left untouched so they can be replayed.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.FallbackStore) ports.FallbackStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Append(ctx context.Context, attempt domain.Attempt) error {
	for _, p := range m.patterns {
		attempt.Reason = p.ReplaceAllString(attempt.Reason, Mask)
	}
	return m.next.Append(ctx, attempt)
}

func (m *piiMiddleware) Latest(ctx context.Context, kind domain.AttemptKind) (domain.Attempt, error) {
	return m.next.Latest(ctx, kind)
}

func (m *piiMiddleware) List(ctx context.Context, kind domain.AttemptKind) ([]domain.Attempt, error) {
	return m.next.List(ctx, kind)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// Close forwards to the wrapped store when it holds resources.
func (m *piiMiddleware) Close() error {
	return closeNext(m.next)
}
