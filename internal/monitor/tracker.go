package monitor

import "sync"

// Tracker keeps the last known stock state per target URL and detects
// out-of-stock to in-stock edges. A URL with no recorded state is treated
// as out of stock, so the first in-stock observation counts as a restock.
type Tracker struct {
	mu   sync.Mutex
	last map[string]bool
}

func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]bool)}
}

// Observe records the latest stock state for url and reports whether this
// observation is a restock edge.
func (t *Tracker) Observe(url string, inStock bool) (restocked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := t.last[url]
	t.last[url] = inStock
	return inStock && !was
}

// Forget drops the recorded state for url, such as when a target is removed.
func (t *Tracker) Forget(url string) {
	t.mu.Lock()
	delete(t.last, url)
	t.mu.Unlock()
}
