package cache_test

import (
	"sync"
	"testing"

	"github.com/aretw0/storefront/pkg/cache"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InsertAndRemove(t *testing.T) {
	s := cache.New()
	s.ReplaceStreams([]domain.Stream{{ID: "a"}, {ID: "b"}})

	require.NoError(t, s.Insert(domain.Stream{ID: "c", IsNew: true}))
	streams := s.Streams()
	require.Len(t, streams, 3)
	assert.Equal(t, "c", streams[0].ID, "new streams go on top")

	err := s.Insert(domain.Stream{ID: "a"})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Error(t, s.Insert(domain.Stream{}))

	assert.True(t, s.RemoveByID("b"))
	assert.False(t, s.RemoveByID("b"))
	assert.False(t, s.RemoveByID(""))

	_, ok := s.Stream("b")
	assert.False(t, ok)
	assert.Len(t, s.Streams(), 2)
}

func TestStore_RemoveDoesNotAliasSnapshots(t *testing.T) {
	s := cache.New()
	s.ReplaceStreams([]domain.Stream{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	before := s.Streams()
	require.True(t, s.RemoveByID("a"))

	assert.Equal(t, []string{"a", "b", "c"}, ids(before), "earlier snapshots stay intact")
	assert.Equal(t, []string{"b", "c"}, ids(s.Streams()))
}

func TestStore_PatchCurrentUser(t *testing.T) {
	s := cache.New()
	balance := 4200.0

	err := s.PatchCurrentUser(domain.UserPatch{Balance: &balance})
	assert.ErrorIs(t, err, domain.ErrNoCurrentUser)

	s.SetCurrentUser(domain.User{ID: "u1", FirstName: "Ali", Balance: 10})
	require.NoError(t, s.PatchCurrentUser(domain.UserPatch{Balance: &balance}))

	u, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, 4200.0, u.Balance)
	assert.Equal(t, "Ali", u.FirstName)
}

func TestStore_VersionTracksMutations(t *testing.T) {
	s := cache.New()
	v0 := s.Version()

	require.NoError(t, s.Insert(domain.Stream{ID: "x"}))
	v1 := s.Version()
	assert.Greater(t, v1, v0)

	s.RemoveByID("missing")
	assert.Equal(t, v1, s.Version(), "no-op removals do not bump the version")
}

func TestStore_ConcurrentInserts(t *testing.T) {
	s := cache.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Insert(domain.Stream{ID: string(rune('A' + n))})
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Streams(), 50)
}

func ids(streams []domain.Stream) []string {
	out := make([]string, len(streams))
	for i, st := range streams {
		out[i] = st.ID
	}
	return out
}
