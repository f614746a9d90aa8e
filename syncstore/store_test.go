package syncstore

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/furry-store/bus"
)

var errFull = errors.New("full")

type mapSource struct {
	data    map[string]int
	key     string
	initial Initial[int]
	fail    bool
}

func (m *mapSource) Key() string { return m.key }

func (m *mapSource) Read() int {
	if v, ok := m.data[m.key]; ok {
		return v
	}
	return m.initial.Resolve()
}

func (m *mapSource) Commit(v int) error {
	if m.fail {
		return errFull
	}
	m.data[m.key] = v
	return nil
}

type scope struct{ name string }

type scopedSource struct {
	mapSource
	scope *scope
}

func (s *scopedSource) Scope() any { return s.scope }

func newSource(key string, initial Initial[int]) *scopedSource {
	return &scopedSource{
		mapSource: mapSource{data: map[string]int{}, key: key, initial: initial},
		scope:     &scope{name: "tab"},
	}
}

func TestStore_WriteThenReadIsFresh(t *testing.T) {
	src := newSource("count", Value(0))
	s := New[int](src, bus.NewLocal())

	require.NoError(t, s.Set(7))
	assert.Equal(t, 7, s.Snapshot())
}

func TestStore_SubscribeFiresOncePerWrite(t *testing.T) {
	b := bus.NewLocal()
	src := newSource("count", Value(0))
	s := New[int](src, b)
	other := New[int](&scopedSource{mapSource: mapSource{data: src.data, key: "other"}, scope: src.scope}, b)

	calls, otherCalls := 0, 0
	s.Subscribe(func() { calls++ })
	s.Subscribe(func() { calls++ })
	other.Subscribe(func() { otherCalls++ })

	require.NoError(t, s.Set(1))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, otherCalls)
}

func TestStore_SubscribeDoesNotInvokeCallback(t *testing.T) {
	s := New[int](newSource("count", Value(0)), bus.NewLocal())
	calls := 0
	unsub := s.Subscribe(func() { calls++ })
	defer unsub()
	assert.Equal(t, 0, calls)
}

func TestStore_UpdateTwiceAccumulates(t *testing.T) {
	s := New[int](newSource("count", Value(0)), bus.NewLocal())
	inc := func(old int) int { return old + 1 }

	require.NoError(t, s.Dispatch(With(inc)))
	require.NoError(t, s.Dispatch(With(inc)))
	assert.Equal(t, 2, s.Snapshot())
}

func TestStore_UpdateUsesLastDeliveredValue(t *testing.T) {
	src := newSource("count", Value(0))
	s := New[int](src, bus.NewLocal())
	assert.Equal(t, 0, s.Snapshot())

	// a write that bypasses this store and its bus is not seen by Update
	src.data["count"] = 10
	require.NoError(t, s.Update(func(old int) int { return old + 1 }))
	assert.Equal(t, 1, s.Snapshot())
}

func TestStore_NoticeRefreshesLastDelivered(t *testing.T) {
	b := bus.NewLocal()
	src := newSource("count", Value(0))
	a := New[int](src, b)
	c := New[int](src, b)
	a.Subscribe(func() {})

	require.NoError(t, c.Set(5))
	last, ok := a.Last()
	require.True(t, ok)
	assert.Equal(t, 5, last)

	require.NoError(t, a.Update(func(old int) int { return old * 2 }))
	assert.Equal(t, 10, c.Snapshot())
}

func TestStore_FailedCommitPublishesNothing(t *testing.T) {
	src := newSource("count", Value(0))
	s := New[int](src, bus.NewLocal())
	calls := 0
	s.Subscribe(func() { calls++ })

	src.fail = true
	err := s.Set(3)
	require.Error(t, err)
	assert.Equal(t, errFull, errors.Cause(err))
	assert.Equal(t, 0, calls)
	_, ok := s.Last()
	assert.False(t, ok)
}

func TestStore_LazyInitialRunsOnlyOnRead(t *testing.T) {
	produced := 0
	s := New[int](newSource("count", Lazy(func() int {
		produced++
		return 42
	})), bus.NewLocal())
	assert.Equal(t, 0, produced)

	assert.Equal(t, 42, s.Snapshot())
	assert.Equal(t, 42, s.Snapshot())
	assert.Equal(t, 2, produced)
}

func TestStore_MutateForgetsAndPublishes(t *testing.T) {
	src := newSource("count", Value(0))
	s := New[int](src, bus.NewLocal())
	require.NoError(t, s.Set(3))

	calls := 0
	s.Subscribe(func() { calls++ })
	require.NoError(t, s.Mutate(func() error {
		delete(src.data, "count")
		return nil
	}))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Snapshot())
}

func TestStore_MutateErrorPublishesNothing(t *testing.T) {
	s := New[int](newSource("count", Value(0)), bus.NewLocal())
	calls := 0
	s.Subscribe(func() { calls++ })

	err := s.Mutate(func() error { return errFull })
	require.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestStore_SetterDispatchesLiteral(t *testing.T) {
	s := New[int](newSource("count", Value(0)), bus.NewLocal())
	set := s.Setter()
	require.NoError(t, set(To(9)))
	require.NoError(t, set(With[int](nil)))
	assert.Equal(t, 9, s.Get())
}
