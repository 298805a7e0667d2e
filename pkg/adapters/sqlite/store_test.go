package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/storefront/pkg/adapters/sqlite"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Contract(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "fallback.db"))
	ports.RunFallbackStoreContract(t, store)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.db")
	ctx := context.Background()

	first, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	payload := []byte(`{"commentor":"Ali","rating":4}`)
	require.NoError(t, first.Append(ctx, domain.Attempt{ID: "a1", Kind: domain.AttemptComment, TargetID: "p1", Payload: payload}))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	got, err := second.Latest(ctx, domain.AttemptComment)
	require.NoError(t, err)
	assert.Equal(t, payload, got.Payload)
	assert.Equal(t, "p1", got.TargetID)
}

func TestStore_DuplicateID(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "fallback.db"))
	ctx := context.Background()

	a := domain.Attempt{ID: "a1", Kind: domain.AttemptComment, Payload: []byte("{}")}
	require.NoError(t, store.Append(ctx, a))
	assert.ErrorIs(t, store.Append(ctx, a), domain.ErrDuplicateID)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), " ")
	assert.Error(t, err)
}
