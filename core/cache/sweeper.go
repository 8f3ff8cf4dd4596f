package cache

import (
	"context"
	"fmt"
	"time"
)

// Start launches the background sweeper. It runs until ctx is done or
// Stop is called. Only the first call starts a sweeper.
func (c *Cache) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go c.run(ctx)
	return nil
}

// Stop asks the sweeper to exit and waits until it has, or until ctx expires.
// A sweep pass in progress always completes first.
func (c *Cache) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stop) })
	if !c.started.Load() {
		return nil
	}

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for cache sweeper: %w", ctx.Err())
	}
}

func (c *Cache) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log.Info("cache sweeper started", "interval", c.interval, "ttl", c.ttl)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("cache sweeper stopping", "reason", ctx.Err())
			return
		case <-c.stop:
			c.log.Info("cache sweeper stopping")
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// evicted records a key removed by a sweep pass.
type evicted struct {
	key string
	age time.Duration
}

// Sweep removes every entry older than the TTL and returns how many were
// removed. One timestamp is used for the whole pass, and the pass holds the
// cache lock from enumeration to the last deletion.
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	var removed []evicted
	for key, e := range c.entries {
		if age := e.Age(now); age > c.ttl {
			delete(c.entries, key)
			removed = append(removed, evicted{key: key, age: age})
		}
	}
	c.metrics.swept(len(c.entries), len(removed))
	c.mu.Unlock()

	for _, r := range removed {
		c.log.Info("cache sweeper removed entry", "key", r.key, "age", r.age.Truncate(time.Second))
	}
	return len(removed)
}
