// Package cache provides the read caches for month views: generic LRU
// caches with TTL, swept periodically by a Manager.
package cache

import (
	"log/slog"
	"time"
)

// Cache is the read-through surface handlers use.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Sweeper is implemented by caches that can drop expired entries.
type Sweeper interface {
	CleanExpired() int
}

// Manager owns the background sweep for every registered cache.
type Manager struct {
	sweepers []Sweeper
	stop     chan struct{}
	done     chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register must be called before StartCleanup.
func (m *Manager) Register(s Sweeper) {
	m.sweepers = append(m.sweepers, s)
}

// StartCleanup sweeps all registered caches on the given interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	go func() {
		defer close(m.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed := 0
				for _, s := range m.sweepers {
					removed += s.CleanExpired()
				}
				if removed > 0 {
					slog.Debug("cache sweep", "removed", removed)
				}
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends the sweep goroutine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}
