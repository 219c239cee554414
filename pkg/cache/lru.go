package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/Karlitosantana/reima-resale/pkg/logger"
	"github.com/Karlitosantana/reima-resale/pkg/metric"
)

// LRUCache is a size-bounded cache with optional per-entry TTL and a
// background sweep for expired entries. The name labels its metrics.
type LRUCache[K comparable, V any] struct {
	items   map[K]*list.Element
	order   *list.List
	mutex   sync.Mutex
	name    string
	log     logger.Logger
	metrics metric.Cache

	capacity        int
	cleanupInterval time.Duration
	cleanupStop     chan struct{}
	onEvicted       func(key K, value V)
}

type cacheItem[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

func NewLRUCache[K comparable, V any](
	capacity int,
	name string,
	log logger.Logger,
	metrics metric.Cache,
) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache.NewLRUCache: capacity must be positive, got %d", capacity)
	}

	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
		name:     name,
		log:      log,
		metrics:  metrics,
	}, nil
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mutex.Lock()
	defer c.mutex.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.metrics.Miss(c.name)
		return zero, false
	}

	item := elem.Value.(*cacheItem[K, V])
	if item.expired(time.Now()) {
		c.evict(elem)
		c.metrics.Miss(c.name)
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.metrics.Hit(c.name)

	return item.value, true
}

func (c *LRUCache[K, V]) Put(key K, value V, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		item := elem.Value.(*cacheItem[K, V])
		c.order.MoveToFront(elem)
		item.value = value
		item.expires = expires
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(&cacheItem[K, V]{
		key:     key,
		value:   value,
		expires: expires,
	})
	c.items[key] = elem
	c.metrics.Size(c.name, c.order.Len())
}

func (c *LRUCache[K, V]) Has(key K) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}

	return !elem.Value.(*cacheItem[K, V]).expired(time.Now())
}

func (c *LRUCache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.order.Len()
}

func (c *LRUCache[K, V]) Capacity() int {
	return c.capacity
}

// Purge drops every entry. Eviction callbacks run outside the lock so a
// callback may call back into the cache.
func (c *LRUCache[K, V]) Purge() {
	var evicted []cacheItem[K, V]

	c.mutex.Lock()
	// Walk oldest to newest so callbacks observe LRU order.
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		item := elem.Value.(*cacheItem[K, V])
		evicted = append(evicted, cacheItem[K, V]{key: item.key, value: item.value})
	}
	c.order.Init()
	clear(c.items)
	c.metrics.Size(c.name, 0)
	c.mutex.Unlock()

	if c.onEvicted != nil {
		for i := range evicted {
			c.onEvicted(evicted[i].key, evicted[i].value)
		}
	}
}

func (c *LRUCache[K, V]) StartCleanup(interval time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.cleanupStop != nil {
		close(c.cleanupStop)
	}

	c.cleanupInterval = interval
	c.cleanupStop = make(chan struct{})
	go c.runCleanup()
}

func (c *LRUCache[K, V]) StopCleanup() {
	c.mutex.Lock()
	if c.cleanupStop != nil {
		close(c.cleanupStop)
		c.cleanupStop = nil
	}
	c.mutex.Unlock()
}

func (c *LRUCache[K, V]) SetOnEvicted(onEvicted func(key K, value V)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onEvicted = onEvicted
}

func (c *LRUCache[K, V]) runCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweepExpired()
		case <-c.cleanupStop:
			return
		}
	}
}

func (c *LRUCache[K, V]) sweepExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	var stale []*list.Element

	for _, elem := range c.items {
		if elem.Value.(*cacheItem[K, V]).expired(now) {
			stale = append(stale, elem)
		}
	}

	for _, elem := range stale {
		c.evict(elem)
	}

	if len(stale) > 0 {
		c.log.Infow("cache cleanup completed",
			"cache", c.name,
			"removed", len(stale),
			"remaining", c.order.Len(),
		)
	}
}

func (c *LRUCache[K, V]) evictOldest() {
	if elem := c.order.Back(); elem != nil {
		c.evict(elem)
	}
}

// evict must be called with the lock held.
func (c *LRUCache[K, V]) evict(elem *list.Element) {
	c.order.Remove(elem)
	item := elem.Value.(*cacheItem[K, V])
	delete(c.items, item.key)
	if c.onEvicted != nil {
		c.onEvicted(item.key, item.value)
	}
	c.metrics.Eviction(c.name, "lru")
	c.metrics.Size(c.name, c.order.Len())
}

func (i *cacheItem[K, V]) expired(now time.Time) bool {
	return !i.expires.IsZero() && now.After(i.expires)
}
