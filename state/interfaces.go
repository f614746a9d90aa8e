package state

// Subscribable emits change notifications.
type Subscribable interface {
	Subscribe(fn func()) func()
}

// Snapshotter returns the current value without side effects.
type Snapshotter[T any] interface {
	Snapshot() T
}

// Store is the subscribe + snapshot pair consumed by renderers.
// Subscribe must not call fn itself; Snapshot must be cheap and repeatable.
type Store[T any] interface {
	Subscribable
	Snapshotter[T]
}

// Readable exposes read-only reactive state.
type Readable[T any] interface {
	Store[T]
	Get() T
	SubscribeWithScheduler(scheduler Scheduler, fn func()) func()
}

// Writable exposes read/write reactive state.
type Writable[T any] interface {
	Readable[T]
	Set(value T) bool
	Update(fn func(T) T) bool
}

// StoreFunc adapts a subscribe/snapshot pair into a Store.
type StoreFunc[T any] struct {
	SubscribeFunc func(fn func()) func()
	SnapshotFunc  func() T
}

// Subscribe registers fn with the wrapped subscribe function.
func (s StoreFunc[T]) Subscribe(fn func()) func() {
	if s.SubscribeFunc == nil || fn == nil {
		return func() {}
	}
	return s.SubscribeFunc(fn)
}

// Snapshot calls the wrapped snapshot function.
func (s StoreFunc[T]) Snapshot() T {
	if s.SnapshotFunc == nil {
		var zero T
		return zero
	}
	return s.SnapshotFunc()
}
