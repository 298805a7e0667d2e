package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/persistence/middleware"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_MasksReason(t *testing.T) {
	ctx := context.Background()
	mw, err := middleware.NewPIIMiddleware(middleware.DefaultReasonPatterns)
	require.NoError(t, err)
	store := mw(memory.NewStore())

	a := attempt
	a.Reason = "422: user +998 (90) 123-45-67 <ali@example.com> is blocked"
	require.NoError(t, store.Append(ctx, a))

	got, err := store.Latest(ctx, domain.AttemptComment)
	require.NoError(t, err)
	assert.Equal(t, "422: user *** <***> is blocked", got.Reason)
	assert.Equal(t, attempt.Payload, got.Payload, "payload is kept for replay")
}

func TestPIIMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	pii, err := middleware.NewPIIMiddleware(middleware.DefaultReasonPatterns)
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	ports.RunFallbackStoreContract(t, middleware.Chain(memory.NewStore(), pii, enc))
}
