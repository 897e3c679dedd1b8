package bus

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/genricoloni/multiview/internal/logutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler receives one payload. A returned error is reported, never propagated to the publisher.
type Handler[T any] func(payload T) error

// Predicate filters delivery without the publisher knowing who listens
type Predicate[T any] func(payload T) bool

// DeliveryFailure describes one handler that failed during a publish
type DeliveryFailure struct {
	Channel        string
	SubscriptionID uuid.UUID
	Err            error
}

// Subscription is the handle returned by Subscribe
type Subscription struct {
	id      uuid.UUID
	channel string
	cancel  func()
	once    sync.Once
}

// ID returns the subscription's unique identifier
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Channel returns the name of the channel the subscription listens on
func (s *Subscription) Channel() string {
	return s.channel
}

// Unsubscribe removes the subscription. Calling it more than once is a no-op.
// It is safe to call from inside a handler running in a publish.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

type subscriber[T any] struct {
	id      uuid.UUID
	handler Handler[T]
	filter  Predicate[T]
	active  atomic.Bool
}

// Topic is one named channel with a fixed payload type.
// Publish delivers synchronously on the calling goroutine.
type Topic[T any] struct {
	name     string
	logger   *zap.Logger
	warn     *logutil.Throttled
	onFailed func(DeliveryFailure)

	mu   sync.Mutex
	subs []*subscriber[T] // copy-on-write, never mutated in place
}

func newTopic[T any](name string, logger *zap.Logger, onFailed func(DeliveryFailure)) *Topic[T] {
	l := logger.With(zap.String("channel", name))
	return &Topic[T]{
		name:     name,
		logger:   l,
		warn:     logutil.NewThrottled(l, logutil.DefaultWarningInterval),
		onFailed: onFailed,
	}
}

// Name returns the channel name
func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers a handler that receives every payload
func (t *Topic[T]) Subscribe(handler Handler[T]) *Subscription {
	return t.SubscribeWhen(handler, nil)
}

// SubscribeWhen registers a handler that only receives payloads accepted by filter.
// A nil filter accepts everything.
func (t *Topic[T]) SubscribeWhen(handler Handler[T], filter Predicate[T]) *Subscription {
	s := &subscriber[T]{
		id:      uuid.New(),
		handler: handler,
		filter:  filter,
	}
	s.active.Store(true)

	t.mu.Lock()
	next := make([]*subscriber[T], len(t.subs), len(t.subs)+1)
	copy(next, t.subs)
	t.subs = append(next, s)
	t.mu.Unlock()

	return &Subscription{
		id:      s.id,
		channel: t.name,
		cancel:  func() { t.remove(s) },
	}
}

// Unsubscribe removes a subscription created on this topic
func (t *Topic[T]) Unsubscribe(sub *Subscription) {
	sub.Unsubscribe()
}

// Len returns the number of active subscribers
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *Topic[T]) remove(s *subscriber[T]) {
	// Flip first so an in-flight publish skips it even if it already holds the old slice
	s.active.Store(false)

	t.mu.Lock()
	defer t.mu.Unlock()
	next := make([]*subscriber[T], 0, len(t.subs))
	for _, cur := range t.subs {
		if cur != s {
			next = append(next, cur)
		}
	}
	t.subs = next
}

// Publish delivers payload to every subscriber registered when the call starts.
// Subscribers added during the publish are not guaranteed to see it.
// A failing handler does not stop delivery to the others.
// It returns the number of handlers that ran.
func (t *Topic[T]) Publish(payload T) int {
	t.mu.Lock()
	snapshot := t.subs
	t.mu.Unlock()

	delivered := 0
	for _, s := range snapshot {
		if !s.active.Load() {
			continue
		}
		if s.filter != nil && !t.accepts(s, payload) {
			continue
		}
		delivered++
		if err := t.deliver(s, payload); err != nil {
			t.report(s, err)
		}
	}
	return delivered
}

func (t *Topic[T]) accepts(s *subscriber[T], payload T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.report(s, fmt.Errorf("predicate panic: %v", r))
			ok = false
		}
	}()
	return s.filter(payload)
}

func (t *Topic[T]) deliver(s *subscriber[T], payload T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return s.handler(payload)
}

func (t *Topic[T]) report(s *subscriber[T], err error) {
	t.warn.Warn("Subscriber failed during publish",
		zap.String("subscription", s.id.String()),
		zap.Error(err))
	if t.onFailed != nil {
		t.onFailed(DeliveryFailure{Channel: t.name, SubscriptionID: s.id, Err: err})
	}
}
