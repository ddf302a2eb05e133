package clock

import "time"

// Cached holds a value that is recomputed at most once per interval.
// It is not safe for concurrent use; the owner serializes access.
type Cached[T any] struct {
	clock     Clock
	interval  time.Duration
	value     T
	checkedAt time.Time
	valid     bool
}

// NewCached returns a Cached with the zero value of T and no refresh yet,
// so the first Get always refreshes.
func NewCached[T any](c Clock, interval time.Duration) *Cached[T] {
	if c == nil {
		c = Real{}
	}
	return &Cached[T]{clock: c, interval: interval}
}

// Get returns the cached value, calling refresh first if the interval has
// elapsed since the last refresh.
func (c *Cached[T]) Get(refresh func() T) T {
	if c.Expired() {
		c.Set(refresh())
	}
	return c.value
}

// Set stores v and restarts the interval.
func (c *Cached[T]) Set(v T) {
	c.value = v
	c.checkedAt = c.clock.Now()
	c.valid = true
}

// Peek returns the cached value without refreshing.
func (c *Cached[T]) Peek() T {
	return c.value
}

// Expired reports whether the next Get would refresh.
func (c *Cached[T]) Expired() bool {
	return !c.valid || c.clock.Since(c.checkedAt) >= c.interval
}

// CheckedAt returns the time of the last refresh, zero if none.
func (c *Cached[T]) CheckedAt() time.Time {
	return c.checkedAt
}
