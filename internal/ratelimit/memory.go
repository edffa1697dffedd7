package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	sweepInterval  = time.Minute
	staleThreshold = 10 * time.Minute
)

// bucket tracks the token balance for one key.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// take refills the bucket for the time since lastSeen, caps it at burst,
// and consumes one token if available.
func (b *bucket) take(now time.Time, rate, burst float64) bool {
	b.tokens += now.Sub(b.lastSeen).Seconds() * rate
	if b.tokens > burst {
		b.tokens = burst
	}
	b.lastSeen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// MemoryLimiter is a per-key token bucket held in process memory.
// Suitable for a single instance; a fleet behind one gateway needs a
// shared implementation of Limiter instead.
type MemoryLimiter struct {
	rate  float64 // sustained tokens per second
	burst float64 // bucket capacity

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryLimiter creates a limiter allowing rate requests per second per
// key with bursts up to burst. A sweeper goroutine drops keys idle longer
// than staleThreshold; Close stops it.
func NewMemoryLimiter(rate float64, burst int) *MemoryLimiter {
	m := &MemoryLimiter{
		rate:    rate,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Allow consumes one token for key, creating a full bucket on first sight.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok {
		m.buckets[key] = &bucket{tokens: m.burst - 1, lastSeen: now}
		return true, nil
	}
	return b.take(now, m.rate, m.burst), nil
}

// Close stops the sweeper. Safe to call more than once.
func (m *MemoryLimiter) Close() error {
	m.stopOnce.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictStale()
		}
	}
}

func (m *MemoryLimiter) evictStale() {
	cutoff := time.Now().Add(-staleThreshold)

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}
