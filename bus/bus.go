// Package bus implements the key-scoped notification bus that tells store
// readers a key changed. Notices carry no payload; readers re-read the
// source of truth.
package bus

import (
	"sync"

	"github.com/odvcencio/furry-store/metrics"
	"github.com/odvcencio/furry-store/state"
)

// Bus publishes and delivers key-scoped change notices.
type Bus interface {
	Publish(scope any, key string)
	Subscribe(scope any, key string, fn func()) func()
}

// Notice identifies one change. It never carries the new value.
type Notice struct {
	Scope  any
	Key    string
	Remote bool
}

type topic struct {
	scope any
	key   string
}

type subscriber struct {
	id        uint64
	fn        func()
	scheduler state.Scheduler
}

type observer struct {
	id uint64
	fn func(Notice)
}

// Local is an in-memory Bus. Scopes must be comparable.
type Local struct {
	mu        sync.Mutex
	topics    map[topic][]subscriber
	observers []observer
	next      uint64
}

// NewLocal creates an empty bus.
func NewLocal() *Local {
	return &Local{
		topics: make(map[topic][]subscriber),
	}
}

// Publish delivers a notice to every subscription on (scope, key) that is
// live when Publish starts. Delivery is synchronous unless the subscription
// carries a scheduler.
func (b *Local) Publish(scope any, key string) {
	b.publish(scope, key, metrics.OriginLocal)
}

// Relay publishes a notice that originated in another execution context.
// Delivery is identical to Publish.
func (b *Local) Relay(scope any, key string) {
	b.publish(scope, key, metrics.OriginRemote)
}

func (b *Local) publish(scope any, key, origin string) {
	if b == nil {
		return
	}
	t := topic{scope: scope, key: key}
	b.mu.Lock()
	subs := append([]subscriber(nil), b.topics[t]...)
	observers := append([]observer(nil), b.observers...)
	b.mu.Unlock()

	metrics.NoticesPublished.WithLabelValues(origin).Inc()
	notice := Notice{Scope: scope, Key: key, Remote: origin == metrics.OriginRemote}
	for _, o := range observers {
		o.fn(notice)
	}
	for _, sub := range subs {
		if sub.scheduler == nil {
			sub.fn()
			continue
		}
		sub.scheduler.Schedule(sub.fn)
	}
}

// Subscribe registers fn for notices on (scope, key).
func (b *Local) Subscribe(scope any, key string, fn func()) func() {
	return b.SubscribeWithScheduler(scope, key, nil, fn)
}

// SubscribeWithScheduler registers fn and hands each delivery to scheduler.
// A nil scheduler delivers synchronously.
func (b *Local) SubscribeWithScheduler(scope any, key string, scheduler state.Scheduler, fn func()) func() {
	if b == nil || fn == nil {
		return func() {}
	}
	t := topic{scope: scope, key: key}
	b.mu.Lock()
	if b.topics == nil {
		b.topics = make(map[topic][]subscriber)
	}
	id := b.next
	b.next++
	b.topics[t] = append(b.topics[t], subscriber{id: id, fn: fn, scheduler: scheduler})
	b.mu.Unlock()
	metrics.Subscriptions.WithLabelValues().Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.remove(t, id)
			metrics.Subscriptions.WithLabelValues().Dec()
		})
	}
}

// Observe registers fn for every notice published or relayed on the bus.
// fn runs on the publishing goroutine before the subscriptions.
func (b *Local) Observe(fn func(Notice)) func() {
	if b == nil || fn == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.next
	b.next++
	b.observers = append(b.observers, observer{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, o := range b.observers {
				if o.id == id {
					b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Len reports the number of live subscriptions on (scope, key).
func (b *Local) Len(scope any, key string) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	n := len(b.topics[topic{scope: scope, key: key}])
	b.mu.Unlock()
	return n
}

func (b *Local) remove(t topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[t]
	for i, sub := range subs {
		if sub.id != id {
			continue
		}
		subs = append(subs[:i:i], subs[i+1:]...)
		break
	}
	if len(subs) == 0 {
		delete(b.topics, t)
		return
	}
	b.topics[t] = subs
}
