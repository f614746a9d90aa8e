package syncstore

// Initial is the fallback used when the source holds no usable value.
// It is either a literal or a producer; producers run only on fallback reads.
type Initial[T any] struct {
	value   T
	produce func() T
}

// Value returns a literal fallback.
func Value[T any](v T) Initial[T] {
	return Initial[T]{value: v}
}

// Lazy returns a fallback computed by fn on each fallback read.
func Lazy[T any](fn func() T) Initial[T] {
	return Initial[T]{produce: fn}
}

// Resolve returns the fallback value.
func (i Initial[T]) Resolve() T {
	if i.produce != nil {
		return i.produce()
	}
	return i.value
}

// Action is a pending write: a literal value or an updater of the previous one.
type Action[T any] struct {
	value    T
	update   func(T) T
	isUpdate bool
}

// To sets value.
func To[T any](value T) Action[T] {
	return Action[T]{value: value}
}

// With derives the next value from the last delivered one.
func With[T any](fn func(T) T) Action[T] {
	return Action[T]{update: fn, isUpdate: true}
}

// Setter is the caller-facing setValue.
type Setter[T any] func(Action[T]) error

// Remover is the caller-facing removeValue.
type Remover func() error
