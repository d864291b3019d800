package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecentRandomTracker_EvictsOldest(t *testing.T) {
	tracker := NewRecentRandomTracker(5)

	for id := int64(1); id <= 6; id++ {
		tracker.Add(id)
	}

	assert.Equal(t, []int64{2, 3, 4, 5, 6}, tracker.Snapshot())
}

func TestRecentRandomTracker_ReAddMovesToNewest(t *testing.T) {
	tracker := NewRecentRandomTracker(3)
	tracker.Add(1)
	tracker.Add(2)
	tracker.Add(3)

	tracker.Add(1)

	assert.Equal(t, []int64{2, 3, 1}, tracker.Snapshot())
}

func TestRecentRandomTracker_SnapshotIsCopy(t *testing.T) {
	tracker := NewRecentRandomTracker(5)
	tracker.Add(10)

	snap := tracker.Snapshot()
	snap[0] = 99

	assert.Equal(t, []int64{10}, tracker.Snapshot())
}

func TestRecentRandomTracker_DefaultCapacity(t *testing.T) {
	tracker := NewRecentRandomTracker(0)
	for id := int64(1); id <= 10; id++ {
		tracker.Add(id)
	}
	assert.Len(t, tracker.Snapshot(), recentRandomCapacity)
}

func TestRecentRandomTracker_Concurrent(t *testing.T) {
	tracker := NewRecentRandomTracker(5)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := int64(0); i < 100; i++ {
				tracker.Add(base*1000 + i)
				_ = tracker.Snapshot()
			}
		}(int64(g))
	}
	wg.Wait()

	snap := tracker.Snapshot()
	assert.Len(t, snap, 5)
	seen := make(map[int64]bool)
	for _, id := range snap {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}
