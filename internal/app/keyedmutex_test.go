package app

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := newKeyedMutex()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("SHIP-A")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("expected 100 increments, got %d", counter)
	}
}

func TestKeyedMutexLockAllDeduplicates(t *testing.T) {
	km := newKeyedMutex()

	// Duplicate keys must not deadlock on the second acquisition.
	unlock := km.LockAll([]string{"SHIP-A", "SHIP-B", "SHIP-A"})
	unlock()

	// Both keys are released and reacquirable.
	unlockA := km.Lock("SHIP-A")
	unlockA()
	unlockB := km.Lock("SHIP-B")
	unlockB()
}

func TestKeyedMutexLockAllOrdering(t *testing.T) {
	km := newKeyedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(flip bool) {
			defer wg.Done()
			keys := []string{"SHIP-A", "SHIP-B"}
			if flip {
				keys = []string{"SHIP-B", "SHIP-A"}
			}
			unlock := km.LockAll(keys)
			unlock()
		}(i%2 == 0)
	}
	wg.Wait()
}
