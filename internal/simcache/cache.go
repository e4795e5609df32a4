// Package simcache memoizes probability analyzer results keyed by a
// fingerprint of their simulation-relevant inputs. The cache is safe for
// concurrent use, guarantees at most one in-flight computation per
// fingerprint, and bounds its contents by TTL and an LRU capacity limit.
package simcache

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fincompass/goalengine/internal/simulation"
)

// ErrUnavailable reports that the cache could not serve a request in time
// (for example an in-flight wait exceeded its budget). Callers recover by
// computing directly; this error is never surfaced to end callers.
var ErrUnavailable = errors.New("simulation cache unavailable")

// ComputeFunc produces a result for a fingerprint on cache miss.
type ComputeFunc func(ctx context.Context) (*simulation.Result, error)

// Stats are the cache's observability counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Expired   int64
	Entries   int
}

type entry struct {
	result    *simulation.Result
	expiresAt time.Time
	element   *list.Element
}

type inflight struct {
	done   chan struct{}
	result *simulation.Result
	err    error
}

// Cache is a TTL- and capacity-bounded memoization layer with a compute-once
// guarantee per fingerprint. Construct with New and release with Close.
type Cache struct {
	logger      *zap.Logger
	ttl         time.Duration
	capacity    int
	waitTimeout time.Duration

	mu       sync.Mutex
	entries  map[Fingerprint]*entry
	lru      *list.List // front is most recently used; values are Fingerprint
	inflight map[Fingerprint]*inflight

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	expired   atomic.Int64

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

// New constructs a Cache and starts its expiry janitor.
func New(logger *zap.Logger, ttl time.Duration, capacity int, waitTimeout, cleanupInterval time.Duration) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if capacity <= 0 {
		capacity = 1024
	}
	if waitTimeout <= 0 {
		waitTimeout = 10 * time.Second
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	c := &Cache{
		logger:      logger,
		ttl:         ttl,
		capacity:    capacity,
		waitTimeout: waitTimeout,
		entries:     make(map[Fingerprint]*entry),
		lru:         list.New(),
		inflight:    make(map[Fingerprint]*inflight),
		stopJanitor: make(chan struct{}),
		janitorDone: make(chan struct{}),
	}
	go c.runJanitor(cleanupInterval)
	return c
}

// Close stops the janitor goroutine. The cache remains usable afterwards but
// expired entries are then only dropped lazily on access.
func (c *Cache) Close() {
	select {
	case <-c.stopJanitor:
	default:
		close(c.stopJanitor)
		<-c.janitorDone
	}
}

// GetOrCompute returns the cached result for fp or invokes compute exactly
// once across all concurrent callers for the same fingerprint. Other callers
// block until the in-flight computation finishes, bounded by the cache's wait
// timeout, after which they receive ErrUnavailable and should compute
// directly. Failed or cancelled computations are never stored.
func (c *Cache) GetOrCompute(ctx context.Context, fp Fingerprint, compute ComputeFunc) (*simulation.Result, error) {
	c.mu.Lock()

	if e, ok := c.entries[fp]; ok {
		if time.Now().Before(e.expiresAt) {
			c.lru.MoveToFront(e.element)
			c.mu.Unlock()
			c.hits.Add(1)
			return e.result, nil
		}
		c.removeLocked(fp, e)
		c.expired.Add(1)
	}

	if flight, ok := c.inflight[fp]; ok {
		c.mu.Unlock()
		return c.await(ctx, flight)
	}

	flight := &inflight{done: make(chan struct{})}
	c.inflight[fp] = flight
	c.mu.Unlock()
	c.misses.Add(1)

	result, err := compute(ctx)

	c.mu.Lock()
	delete(c.inflight, fp)
	if err == nil {
		c.storeLocked(fp, result)
	}
	c.mu.Unlock()

	flight.result = result
	flight.err = err
	close(flight.done)
	return result, err
}

// Get returns the cached result for fp without computing.
func (c *Cache) Get(fp Fingerprint) (*simulation.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fp]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if !time.Now().Before(e.expiresAt) {
		c.removeLocked(fp, e)
		c.expired.Add(1)
		c.misses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(e.element)
	c.hits.Add(1)
	return e.result, true
}

// Invalidate drops one fingerprint's entry if present.
func (c *Cache) Invalidate(fp Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[fp]; ok {
		c.removeLocked(fp, e)
	}
}

// InvalidateAll drops every cached entry. In-flight computations are
// unaffected; they will store their results when they complete.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Fingerprint]*entry)
	c.lru.Init()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	count := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Expired:   c.expired.Load(),
		Entries:   count,
	}
}

func (c *Cache) await(ctx context.Context, flight *inflight) (*simulation.Result, error) {
	timer := time.NewTimer(c.waitTimeout)
	defer timer.Stop()

	select {
	case <-flight.done:
		if flight.err != nil {
			return nil, flight.err
		}
		c.hits.Add(1)
		return flight.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrUnavailable
	}
}

func (c *Cache) storeLocked(fp Fingerprint, result *simulation.Result) {
	if e, ok := c.entries[fp]; ok {
		e.result = result
		e.expiresAt = time.Now().Add(c.ttl)
		c.lru.MoveToFront(e.element)
		return
	}
	e := &entry{
		result:    result,
		expiresAt: time.Now().Add(c.ttl),
		element:   c.lru.PushFront(fp),
	}
	c.entries[fp] = e

	for len(c.entries) > c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		victim := oldest.Value.(Fingerprint)
		c.removeLocked(victim, c.entries[victim])
		c.evictions.Add(1)
	}
}

func (c *Cache) removeLocked(fp Fingerprint, e *entry) {
	delete(c.entries, fp)
	c.lru.Remove(e.element)
}

func (c *Cache) runJanitor(interval time.Duration) {
	defer close(c.janitorDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopJanitor:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for fp, e := range c.entries {
		if !now.Before(e.expiresAt) {
			c.removeLocked(fp, e)
			c.expired.Add(1)
		}
	}
}
