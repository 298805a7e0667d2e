package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/storefront/pkg/adapters/redis"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunFallbackStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.Attempt{ID: "old", Kind: domain.AttemptComment, Payload: []byte("{}")}))
	mr.FastForward(2 * time.Second)
	require.NoError(t, store.Append(ctx, domain.Attempt{ID: "new", Kind: domain.AttemptComment, Payload: []byte("{}")}))

	list, err := store.List(ctx, domain.AttemptComment)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].ID)

	mr.FastForward(2 * time.Second)
	_, err = store.Latest(ctx, domain.AttemptComment)
	assert.ErrorIs(t, err, domain.ErrAttemptNotFound, "expired entries are pruned from the index")
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("app:"))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.Attempt{ID: "a1", Kind: domain.AttemptComment, Payload: []byte(`{"rating":5}`)}))
	assert.True(t, mr.Exists("app:attempt:a1"))
	assert.ErrorIs(t, store.Append(ctx, domain.Attempt{ID: "a1", Kind: domain.AttemptComment}), domain.ErrDuplicateID)
}

func TestRedisStore_DeleteClaimsOnce(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, domain.Attempt{ID: "a1", Kind: domain.AttemptComment, Payload: []byte("{}")}))

	errs := make(chan error, 8)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Delete(ctx, "a1")
		}()
	}
	wg.Wait()
	close(errs)

	var claimed int
	for err := range errs {
		if err == nil {
			claimed++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAttemptNotFound)
	}
	assert.Equal(t, 1, claimed)
}
