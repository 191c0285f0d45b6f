package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter: fixed window en memoria, para single-instance y tests.
// Mismo comportamiento que RedisLimiter pero sin dependencia externa.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu   sync.Mutex
	hits map[string]*window
	now  func() time.Time
}

type window struct {
	start time.Time
	count int64
}

func NewMemoryLimiter(max int, win time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:    int64(max),
		Window: win,
		hits:   make(map[string]*window),
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	start := now.Truncate(l.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.hits[key]
	if w == nil || !w.start.Equal(start) {
		w = &window{start: start}
		l.hits[key] = w
	}
	w.count++

	res := Result{
		Allowed:     w.count <= l.Max,
		Remaining:   max64(0, l.Max-w.count),
		CurrentHits: w.count,
	}
	if !res.Allowed {
		res.RetryAfter = start.Add(l.Window).Sub(now)
	}
	return res, nil
}
