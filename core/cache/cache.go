// Package cache implements the artifact cache: a concurrency-safe,
// time-bounded store of rendered reports keyed by a generated token.
//
// All access (Put, Get, Delete, Snapshot and the background sweep) is
// serialized through one mutex over the entry map. Critical sections are
// map operations plus the entries gauge update, so the gauge always matches
// the map. A Get observes exactly the sweeps that completed before it.
package cache

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/gaurav-prasanna/reportgate/core"
	"github.com/gaurav-prasanna/reportgate/logger"
)

// Defaults match the gateway's out-of-the-box configuration.
const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

var (
	// ErrNotFound is returned for keys that were never stored or have expired.
	ErrNotFound = errors.New("report key not found")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("cache sweeper already started")
)

// Entry is one cached render. It is never modified after Put.
// Put keeps its own copy of Artifact. Entries returned by Get share their
// bytes and maps with the cache and must be treated as read-only.
type Entry struct {
	Artifact   []byte
	Kind       core.OutputKind
	Definition core.ReportDefinition
	Data       core.ReportData
	CreatedAt  time.Time
}

// Age returns how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// Cache maps generated keys to entries and expires them by age.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry

	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	log      logger.Logger
	metrics  *Metrics

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the maximum entry age.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithSweepInterval sets how often the sweeper runs.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Cache) { c.interval = d }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache. The sweeper is not running until Start.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]Entry),
		ttl:      DefaultTTL,
		interval: DefaultSweepInterval,
		now:      time.Now,
		log:      logger.NewNop(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured maximum entry age.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Put stores entry under a new key and returns the key.
// CreatedAt is stamped here when the caller left it zero.
func (c *Cache) Put(entry Entry) string {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}
	entry.Artifact = slices.Clone(entry.Artifact)

	c.mu.Lock()
	key := newKey()
	for {
		if _, taken := c.entries[key]; !taken {
			break
		}
		key = newKey()
	}
	c.entries[key] = entry
	c.metrics.stored(len(c.entries), len(entry.Artifact))
	c.mu.Unlock()

	c.log.Debug("report cached", "key", key, "kind", entry.Kind, "size", len(entry.Artifact))
	return key
}

// Get returns the entry for key. Expired entries that the sweeper has not
// reached yet are still returned.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	c.metrics.lookedUp(ok)
	return entry, ok
}

// Lookup is Get returning ErrNotFound for missing keys.
func (c *Cache) Lookup(key string) (Entry, error) {
	entry, ok := c.Get(key)
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.entries[key]; existed {
		delete(c.entries, key)
		c.metrics.deleted(len(c.entries))
	}
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ItemInfo describes one entry in a Snapshot.
type ItemInfo struct {
	Timestamp  time.Time `json:"timestamp"`
	Size       int       `json:"pdf_size"`
	AgeSeconds float64   `json:"age_seconds"`
}

// Snapshot is a read-only view of the cache for operators.
type Snapshot struct {
	Count int                 `json:"cache_size"`
	Items map[string]ItemInfo `json:"items"`
}

// Snapshot reports every entry with its age, size and creation time.
func (c *Cache) Snapshot() Snapshot {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Count: len(c.entries),
		Items: make(map[string]ItemInfo, len(c.entries)),
	}
	for key, e := range c.entries {
		snap.Items[key] = ItemInfo{
			Timestamp:  e.CreatedAt,
			Size:       len(e.Artifact),
			AgeSeconds: e.Age(now).Seconds(),
		}
	}
	return snap
}

// newKey returns a time-sortable unique key: a second-precision timestamp
// followed by 128 random bits.
func newKey() string {
	return ksuid.New().String()
}
