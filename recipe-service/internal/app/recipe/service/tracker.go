package service

import "sync"

const recentRandomCapacity = 5

// RecentRandomTracker remembers the last few randomly served recipe ids
// process-wide. It is best effort: losing it on restart is fine, and two
// concurrent picks may both miss each other's id.
type RecentRandomTracker struct {
	mu       sync.Mutex
	ids      []int64
	capacity int
}

func NewRecentRandomTracker(capacity int) *RecentRandomTracker {
	if capacity <= 0 {
		capacity = recentRandomCapacity
	}
	return &RecentRandomTracker{
		ids:      make([]int64, 0, capacity),
		capacity: capacity,
	}
}

// Snapshot returns a copy, oldest first.
func (t *RecentRandomTracker) Snapshot() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]int64, len(t.ids))
	copy(out, t.ids)
	return out
}

// Add appends id as the newest entry and evicts the oldest beyond capacity.
// An id already present is moved to the newest position.
func (t *RecentRandomTracker) Add(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, existing := range t.ids {
		if existing == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}

	t.ids = append(t.ids, id)
	if len(t.ids) > t.capacity {
		t.ids = append(t.ids[:0], t.ids[len(t.ids)-t.capacity:]...)
	}
}
