package crosstab

import (
	"context"
	"sync"
)

// Hub connects channels in one process. Every Broadcast is delivered to
// every listener of the hub on its own goroutine.
type Hub struct {
	mu        sync.Mutex
	listeners map[uint64]func(Notice)
	next      uint64
	closed    bool
	wg        sync.WaitGroup
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[uint64]func(Notice))}
}

func (h *Hub) Broadcast(_ context.Context, n Notice) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	targets := make([]func(Notice), 0, len(h.listeners))
	for _, fn := range h.listeners {
		targets = append(targets, fn)
	}
	h.wg.Add(len(targets))
	h.mu.Unlock()

	for _, fn := range targets {
		go func(fn func(Notice)) {
			defer h.wg.Done()
			fn(n)
		}(fn)
	}
	return nil
}

func (h *Hub) Listen(ctx context.Context, fn func(Notice)) (func(), error) {
	if fn == nil {
		return func() {}, nil
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	id := h.next
	h.next++
	h.listeners[id] = fn
	h.mu.Unlock()

	stopped := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
			close(stopped)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-stopped:
		}
	}()
	return stop, nil
}

// Wait blocks until all in-flight deliveries finished.
func (h *Hub) Wait() {
	h.wg.Wait()
}

func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	h.listeners = map[uint64]func(Notice){}
	h.mu.Unlock()
	h.wg.Wait()
	return nil
}
