package persist

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/odvcencio/furry-store/metrics"
	"github.com/odvcencio/furry-store/syncstore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const backendName = "persist"

type source[T any] struct {
	area    *Area
	key     string
	initial syncstore.Initial[T]
}

func (s *source[T]) Scope() any {
	return s.area.eventType
}

func (s *source[T]) Key() string {
	return s.key
}

func (s *source[T]) Read() T {
	ctx, cancel := s.area.context()
	defer cancel()
	raw, ok, err := s.area.storage.GetItem(ctx, s.key)
	switch {
	case err != nil:
		metrics.Fallbacks.WithLabelValues(backendName, metrics.ReasonReadError).Inc()
		s.area.logger.Warn("read failed, using initial value", zap.String("key", s.key), zap.Error(err))
		return s.initial.Resolve()
	case !ok || raw == "":
		metrics.Fallbacks.WithLabelValues(backendName, metrics.ReasonAbsent).Inc()
		return s.initial.Resolve()
	}
	var value T
	if err := json.UnmarshalFromString(raw, &value); err != nil {
		metrics.Fallbacks.WithLabelValues(backendName, metrics.ReasonMalformed).Inc()
		s.area.logger.Debug("malformed value, using initial value", zap.String("key", s.key), zap.Error(err))
		return s.initial.Resolve()
	}
	return value
}

func (s *source[T]) Commit(value T) error {
	raw, err := json.MarshalToString(value)
	if err != nil {
		metrics.Writes.WithLabelValues(backendName, metrics.StatusError).Inc()
		return errors.Wrap(err, "encode value")
	}
	ctx, cancel := s.area.context()
	defer cancel()
	if err := s.area.storage.SetItem(ctx, s.key, raw); err != nil {
		metrics.Writes.WithLabelValues(backendName, metrics.StatusError).Inc()
		return err
	}
	metrics.Writes.WithLabelValues(backendName, metrics.StatusOK).Inc()
	return nil
}

func (s *source[T]) remove() error {
	ctx, cancel := s.area.context()
	defer cancel()
	if err := s.area.storage.RemoveItem(ctx, s.key); err != nil {
		metrics.Writes.WithLabelValues(backendName, metrics.StatusError).Inc()
		return err
	}
	metrics.Writes.WithLabelValues(backendName, metrics.StatusOK).Inc()
	return nil
}

func (s *source[T]) Announce() {
	s.area.broadcast(s.key)
}

// Store is a persistent store bound to one key of an area.
type Store[T any] struct {
	*syncstore.Store[T]
	src *source[T]
}

// New binds key of area. initial is used while the key is absent or its
// stored text does not decode as T; it is never written back implicitly.
func New[T any](area *Area, key string, initial syncstore.Initial[T]) *Store[T] {
	src := &source[T]{area: area, key: key, initial: initial}
	return &Store[T]{
		Store: syncstore.New[T](src, area.bus),
		src:   src,
	}
}

// Remove deletes the stored entry and publishes a notice; readers fall back
// to their initial value.
func (s *Store[T]) Remove() error {
	return s.Mutate(s.src.remove)
}

// Remover returns Remove as a removeValue function.
func (s *Store[T]) Remover() syncstore.Remover {
	return s.Remove
}

// Use returns the current value, its setter and its remover.
func Use[T any](area *Area, key string, initial syncstore.Initial[T]) (T, syncstore.Setter[T], syncstore.Remover) {
	s := New[T](area, key, initial)
	return s.Snapshot(), s.Setter(), s.Remover()
}
