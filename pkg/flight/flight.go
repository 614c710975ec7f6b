package flight

import (
	"context"
	"sync"
	"time"
)

// Cache coalesces concurrent work for the same key and keeps successful results for a
// fixed duration. Failed work is never cached.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	finished map[K]entry[V]
	pending  map[K]*job[V]

	work func(context.Context, K) (V, error)
	ttl  time.Duration
	now  func() time.Time
}

type entry[V any] struct {
	val      V
	deadline time.Time // zero => never expires
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

// NewCache returns a cache around work. ttl <= 0 keeps results forever.
func NewCache[K comparable, V any](ttl time.Duration, work func(context.Context, K) (V, error)) *Cache[K, V] {
	return &Cache[K, V]{
		finished: make(map[K]entry[V]),
		pending:  make(map[K]*job[V]),
		work:     work,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cached value for k, joining any in-flight work for the same key.
func (c *Cache[K, V]) Get(ctx context.Context, k K) (V, error) {
	c.mu.Lock()
	if e, ok := c.finished[k]; ok {
		if e.deadline.IsZero() || c.now().Before(e.deadline) {
			c.mu.Unlock()
			return e.val, nil
		}
		delete(c.finished, k)
	}

	if j, ok := c.pending[k]; ok {
		c.mu.Unlock()
		return c.wait(ctx, j)
	}

	j := &job[V]{done: make(chan struct{})}
	c.pending[k] = j
	c.mu.Unlock()

	c.run(ctx, k, j)
	return j.val, j.err
}

func (c *Cache[K, V]) run(ctx context.Context, k K, j *job[V]) {
	j.val, j.err = c.work(ctx, k)

	c.mu.Lock()
	if j.err == nil {
		e := entry[V]{val: j.val}
		if c.ttl > 0 {
			e.deadline = c.now().Add(c.ttl)
		}
		c.finished[k] = e
	}
	delete(c.pending, k)
	close(j.done)
	c.mu.Unlock()
}

func (c *Cache[K, V]) wait(ctx context.Context, j *job[V]) (V, error) {
	select {
	case <-j.done:
		return j.val, j.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
