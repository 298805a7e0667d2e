package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFallbackStoreContract runs a suite of tests to verify that a FallbackStore
// implementation adheres to the defined interface contract.
func RunFallbackStoreContract(t *testing.T, store FallbackStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405.000000000")

	newAttempt := func(n int, kind domain.AttemptKind, payload string) domain.Attempt {
		return domain.Attempt{
			ID:        fmt.Sprintf("%s-%d", prefix, n),
			Kind:      kind,
			TargetID:  "product-1",
			Payload:   []byte(payload),
			Reason:    "service unavailable",
			CreatedAt: time.Date(2024, 1, 1, 12, n, 0, 0, time.UTC),
		}
	}

	t.Run("Latest Empty", func(t *testing.T) {
		_, err := store.Latest(ctx, domain.AttemptKind(prefix+"-empty"))
		assert.ErrorIs(t, err, domain.ErrAttemptNotFound)
	})

	t.Run("Append and Latest", func(t *testing.T) {
		kind := domain.AttemptKind(prefix + "-latest")
		first := newAttempt(1, kind, `{"comment":"first","rating":5}`)
		second := newAttempt(2, kind, `{"comment":"second","rating":4}`)

		require.NoError(t, store.Append(ctx, first))
		require.NoError(t, store.Append(ctx, second))

		latest, err := store.Latest(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)
		assert.Equal(t, second.Payload, latest.Payload, "payload must round-trip byte for byte")
		assert.Equal(t, second.TargetID, latest.TargetID)
		assert.Equal(t, second.Reason, latest.Reason)
		assert.True(t, second.CreatedAt.Equal(latest.CreatedAt))
	})

	t.Run("List keeps every attempt in order", func(t *testing.T) {
		kind := domain.AttemptKind(prefix + "-list")
		for i := 1; i <= 3; i++ {
			require.NoError(t, store.Append(ctx, newAttempt(10+i, kind, fmt.Sprintf(`{"n":%d}`, i))))
		}

		list, err := store.List(ctx, kind)
		require.NoError(t, err)
		require.Len(t, list, 3)
		for i, a := range list {
			assert.Equal(t, fmt.Sprintf("%s-%d", prefix, 11+i), a.ID)
			assert.Equal(t, []byte(fmt.Sprintf(`{"n":%d}`, i+1)), a.Payload)
		}
	})

	t.Run("Kinds are isolated", func(t *testing.T) {
		a := domain.AttemptKind(prefix + "-a")
		b := domain.AttemptKind(prefix + "-b")
		require.NoError(t, store.Append(ctx, newAttempt(20, a, `{}`)))

		list, err := store.List(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Append rejects duplicate and empty IDs", func(t *testing.T) {
		kind := domain.AttemptKind(prefix + "-dup")
		a := newAttempt(40, kind, `{"v":1}`)
		require.NoError(t, store.Append(ctx, a))

		dup := newAttempt(40, kind, `{"v":2}`)
		assert.ErrorIs(t, store.Append(ctx, dup), domain.ErrDuplicateID)

		noID := newAttempt(41, kind, `{}`)
		noID.ID = ""
		assert.Error(t, store.Append(ctx, noID))

		list, err := store.List(ctx, kind)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, []byte(`{"v":1}`), list[0].Payload, "the first write is kept")
	})

	t.Run("Delete", func(t *testing.T) {
		kind := domain.AttemptKind(prefix + "-delete")
		older := newAttempt(30, kind, `{"v":1}`)
		newer := newAttempt(31, kind, `{"v":2}`)
		require.NoError(t, store.Append(ctx, older))
		require.NoError(t, store.Append(ctx, newer))

		require.NoError(t, store.Delete(ctx, newer.ID))

		latest, err := store.Latest(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, older.ID, latest.ID)

		err = store.Delete(ctx, newer.ID)
		assert.ErrorIs(t, err, domain.ErrAttemptNotFound)
	})
}
