package utils

import (
	"sync"
	"time"
)

// Deduplicator remembers keys for a window. A camera pointed at a label
// submits the same code many times per second; callers use it to act once.
type Deduplicator struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewDeduplicator(window time.Duration, now func() time.Time) *Deduplicator {
	if now == nil {
		now = time.Now
	}
	return &Deduplicator{window: window, now: now, seen: make(map[string]time.Time)}
}

// IsDuplicate reports whether key was seen within the window and records it.
func (d *Deduplicator) IsDuplicate(key string) bool {
	if key == "" || d.window <= 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if ts, ok := d.seen[key]; ok && now.Sub(ts) < d.window {
		return true
	}
	d.seen[key] = now

	// Cleanup old entries if map gets too big
	if len(d.seen) > 10000 {
		for k, v := range d.seen {
			if now.Sub(v) > 2*d.window {
				delete(d.seen, k)
			}
		}
	}
	return false
}
