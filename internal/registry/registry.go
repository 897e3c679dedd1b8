// Package registry is the process-wide table of open sessions.
//
// It answers "which sessions match this identity predicate" and nothing more;
// callers never reach session internals through it.
package registry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/genricoloni/multiview/internal/domain"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrDuplicate is returned when registering an id twice
var ErrDuplicate = errors.New("session already registered")

// Entry is a registered session
type Entry interface {
	Identity() domain.Identity
}

// Registry maps session ids to entries
type Registry[E Entry] struct {
	logger *zap.Logger
	lastID atomic.Int64

	mu      sync.RWMutex
	entries map[int64]E
}

// New creates an empty registry
func New[E Entry](logger *zap.Logger) *Registry[E] {
	return &Registry[E]{
		logger:  logger,
		entries: make(map[int64]E),
	}
}

// NextID allocates a session id. Ids start at 1 and are never reused.
func (r *Registry[E]) NextID() int64 {
	return r.lastID.Add(1)
}

// Register adds e under its session id
func (r *Registry[E]) Register(e E) error {
	id := e.Identity().SessionID

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicate, id)
	}
	r.entries[id] = e
	r.logger.Debug("Session registered", zap.Int64("session", id), zap.Int("open", len(r.entries)))
	return nil
}

// Unregister removes id and reports whether it was present
func (r *Registry[E]) Unregister(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	r.logger.Debug("Session unregistered", zap.Int64("session", id), zap.Int("open", len(r.entries)))
	return true
}

// Get returns the entry for id
func (r *Registry[E]) Get(id int64) (E, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of registered sessions
func (r *Registry[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// IDs returns the registered ids in ascending order
func (r *Registry[E]) IDs() []int64 {
	r.mu.RLock()
	ids := lo.Keys(r.entries)
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// All returns every entry ordered by id
func (r *Registry[E]) All() []E {
	return r.Match(func(domain.Identity) bool { return true })
}

// Match returns the entries whose identity satisfies pred, ordered by id
func (r *Registry[E]) Match(pred func(domain.Identity) bool) []E {
	r.mu.RLock()
	matched := lo.Filter(lo.Values(r.entries), func(e E, _ int) bool {
		return pred(e.Identity())
	})
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b E) int {
		return cmp.Compare(a.Identity().SessionID, b.Identity().SessionID)
	})
	return matched
}
