package registry

import (
	"sync"
	"testing"

	"github.com/genricoloni/multiview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	id domain.Identity
}

func (f fakeSession) Identity() domain.Identity { return f.id }

func session(id int64, syncUID string, ct domain.ContentType) fakeSession {
	return fakeSession{id: domain.Identity{SessionID: id, SyncUID: syncUID, ContentType: ct}}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New[fakeSession](zap.NewNop())

	require.NoError(t, r.Register(session(1, "A", domain.ContentTypeLive)))
	err := r.Register(session(1, "B", domain.ContentTypeLive))
	assert.ErrorIs(t, err, ErrDuplicate)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, "A", got.Identity().SyncUID)

	assert.True(t, r.Unregister(1))
	assert.False(t, r.Unregister(1))
	_, ok = r.Get(1)
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestRegistry_Match(t *testing.T) {
	r := New[fakeSession](zap.NewNop())
	for _, s := range []fakeSession{
		session(3, "A", domain.ContentTypeLive),
		session(1, "A", domain.ContentTypeChannel),
		session(2, "B", domain.ContentTypeLive),
	} {
		require.NoError(t, r.Register(s))
	}

	live := r.Match(func(id domain.Identity) bool { return id.MatchesContentType(domain.ContentTypeLive) })
	require.Len(t, live, 2)
	assert.Equal(t, int64(2), live[0].Identity().SessionID)
	assert.Equal(t, int64(3), live[1].Identity().SessionID)

	assert.Len(t, r.Match(func(id domain.Identity) bool { return id.MatchesContentType(domain.ContentTypeAny) }), 3)
	assert.Equal(t, []int64{1, 2, 3}, r.IDs())
	assert.Len(t, r.All(), 3)
}

func TestRegistry_NextIDIsUnique(t *testing.T) {
	r := New[fakeSession](zap.NewNop())

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := r.NextID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1600)
	assert.False(t, seen[0], "ids start at 1")
}
