package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStoreLockSerializesPerUser(t *testing.T) {
	store := NewStateStore()
	unlock := store.Lock(1)

	acquired := make(chan struct{})
	go func() {
		release := store.Lock(1)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(20 * time.Millisecond):
	}

	// Another user is not blocked.
	other := store.Lock(2)
	other()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}
}

func TestStateStoreDropsIdleLocks(t *testing.T) {
	store := NewStateStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(key int64) {
			defer wg.Done()
			unlock := store.Lock(key % 5)
			unlock()
		}(int64(i))
	}
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.locks)
}

func TestStateStoreKeepsLockWhileHeld(t *testing.T) {
	store := NewStateStore()
	unlock := store.Lock(9)

	store.mu.Lock()
	require.Contains(t, store.locks, int64(9))
	store.mu.Unlock()

	unlock()
	store.mu.Lock()
	assert.NotContains(t, store.locks, int64(9))
	store.mu.Unlock()
}
