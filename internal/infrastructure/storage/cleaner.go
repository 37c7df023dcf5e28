package storage

import (
	"sync"
	"sync/atomic"
	"time"

	"abcstore/pkg/logger"
)

// Cleaner deletes superseded assets off the request path. Work is queued
// on a buffered channel and retried once; what still fails is counted and
// logged so orphan accumulation stays observable.
type Cleaner struct {
	remove func(url string) error
	jobs   chan string
	wg     sync.WaitGroup

	closeOnce sync.Once
	dropped   atomic.Int64
}

func NewCleaner(remove func(url string) error, buffer int) *Cleaner {
	return &Cleaner{
		remove: remove,
		jobs:   make(chan string, buffer),
	}
}

func (c *Cleaner) Start() {
	c.wg.Add(1)
	go c.run()
}

func (c *Cleaner) run() {
	defer c.wg.Done()

	for url := range c.jobs {
		if err := c.remove(url); err == nil {
			continue
		}
		time.Sleep(100 * time.Millisecond)
		if err := c.remove(url); err != nil {
			c.dropped.Add(1)
			logger.Error("Image cleanup failed after retry for %s: %v", url, err)
		}
	}
}

// Enqueue never blocks a caller; when the queue is full the URL is dropped
// and counted. Losing an orphaned file beats failing a user mutation.
func (c *Cleaner) Enqueue(urls ...string) {
	for _, url := range urls {
		select {
		case c.jobs <- url:
		default:
			c.dropped.Add(1)
			logger.Warn("Cleanup queue full, dropping %s", url)
		}
	}
}

// Dropped reports URLs that were never cleaned up.
func (c *Cleaner) Dropped() int64 {
	return c.dropped.Load()
}

// Close drains outstanding work and stops the worker.
func (c *Cleaner) Close() {
	c.closeOnce.Do(func() {
		close(c.jobs)
	})
	c.wg.Wait()
}
