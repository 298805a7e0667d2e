package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunFallbackStoreContract(t, store)
}

func TestMemoryStore_PayloadIsolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	payload := []byte(`{"comment":"great"}`)
	require.NoError(t, store.Append(ctx, domain.Attempt{ID: "a1", Kind: domain.AttemptComment, Payload: payload}))

	// Mutating the caller's slice must not leak into the store.
	payload[2] = 'X'

	got, err := store.Latest(ctx, domain.AttemptComment)
	require.NoError(t, err)
	assert.Equal(t, `{"comment":"great"}`, string(got.Payload))
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.Attempt{ID: "dup", Kind: domain.AttemptComment}))
	assert.ErrorIs(t, store.Append(ctx, domain.Attempt{ID: "dup", Kind: domain.AttemptComment}), domain.ErrDuplicateID)
	assert.Error(t, store.Append(ctx, domain.Attempt{Kind: domain.AttemptComment}), "an attempt needs an id")
}
