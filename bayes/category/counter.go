package category

import (
	"errors"
	"fmt"
)

var errInvalidCount = errors.New("count must be positive")

// Counter tallies occurrences of comparable keys. A key whose count drops to
// zero is removed, so Len only reports keys that are currently observed.
type Counter[K comparable] struct {
	counts map[K]int
	tally  int
}

// NewCounter returns a pointer to an empty Counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{
		counts: make(map[K]int),
	}
}

// Add increases the count of key by n.
func (c *Counter[K]) Add(key K, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", errInvalidCount, n)
	}

	c.counts[key] += n
	c.tally += n

	return nil
}

// Remove decreases the count of key by n. Missing keys are ignored, and
// removing at least the current count deletes the key.
func (c *Counter[K]) Remove(key K, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", errInvalidCount, n)
	}

	current, ok := c.counts[key]
	if !ok {
		return nil
	}

	if n >= current {
		c.tally -= current
		delete(c.counts, key)
	} else {
		c.counts[key] = current - n
		c.tally -= n
	}

	return nil
}

// Get returns the count of key, zero when it was never added.
func (c *Counter[K]) Get(key K) int {
	return c.counts[key]
}

// Tally returns the sum of all counts.
func (c *Counter[K]) Tally() int {
	return c.tally
}

// Len returns the number of distinct keys with a positive count.
func (c *Counter[K]) Len() int {
	return len(c.counts)
}

// Keys returns the observed keys in no particular order.
func (c *Counter[K]) Keys() []K {
	keys := make([]K, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	return keys
}
