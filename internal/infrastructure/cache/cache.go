package cache

import (
	"encoding/json"
	"sync"
	"time"
)

type item struct {
	value      []byte
	expiration int64
}

// Cache is an in-process TTL cache. Entries expire by time only; writers
// never invalidate, so readers may see a stale list until the TTL passes.
type Cache struct {
	items map[string]item
	mu    sync.RWMutex
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
}

func New(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]item),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go c.cleanupExpired()
	return c
}

// Set serializes and stores a value under key for the default TTL.
func (c *Cache) Set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{
		value:      data,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	}
	return nil
}

// Get deserializes the cached value into target. The second return is
// false on a miss or expired entry.
func (c *Cache) Get(key string, target interface{}) (bool, error) {
	c.mu.RLock()
	it, found := c.items[key]
	c.mu.RUnlock()

	if !found || time.Now().UnixNano() > it.expiration {
		return false, nil
	}

	if err := json.Unmarshal(it.value, target); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) Stop() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Cache) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now().UnixNano()
			for key, it := range c.items {
				if now > it.expiration {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
