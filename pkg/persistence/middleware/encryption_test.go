package middleware_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/persistence/middleware"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.FallbackStore, cfg middleware.EncryptionConfig) ports.FallbackStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

var attempt = domain.Attempt{
	ID:        "a1",
	Kind:      domain.AttemptComment,
	TargetID:  "p1",
	Payload:   []byte(`{"commentor":"Ali","comment":"Great","gender":"male","rating":4}`),
	CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunFallbackStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_PayloadIsSealed(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	require.NoError(t, secure.Append(ctx, attempt))

	raw, err := underlying.Latest(ctx, domain.AttemptComment)
	require.NoError(t, err)
	assert.NotContains(t, string(raw.Payload), "Ali", "the underlying store never sees plaintext")
	assert.Equal(t, "p1", raw.TargetID, "metadata stays readable")

	got, err := secure.Latest(ctx, domain.AttemptComment)
	require.NoError(t, err)
	assert.Equal(t, attempt.Payload, got.Payload)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	require.NoError(t, encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey}).Append(ctx, attempt))

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	list, err := rotated.List(ctx, domain.AttemptComment)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attempt.Payload, list[0].Payload)

	stranger := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey})
	_, err = stranger.Latest(ctx, domain.AttemptComment)
	assert.ErrorContains(t, err, "decrypt attempt a1")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestEncryptionMiddleware_ListSkipsUnreadable(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	plain := attempt
	plain.ID = "plain"
	require.NoError(t, underlying.Append(ctx, plain))

	var logs bytes.Buffer
	secure := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey: generateKey(t),
		Logger:    logging.NewWithFormat(&logs, slog.LevelWarn, logging.FormatText),
	})
	require.NoError(t, secure.Append(ctx, attempt))

	list, err := secure.List(ctx, domain.AttemptComment)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
	assert.Equal(t, attempt.Payload, list[0].Payload)
	assert.Contains(t, logs.String(), "plain")

	_, err = underlying.Latest(ctx, domain.AttemptComment)
	require.NoError(t, err)
	all, err := underlying.List(ctx, domain.AttemptComment)
	require.NoError(t, err)
	assert.Len(t, all, 2, "skipped attempts stay stored")
}
