package service

import (
	"sync"
	"testing"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	var locks keyLock
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("watchlist:u1:member:movie:550")
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxSeen)
	}
	if len(locks.locks) != 0 {
		t.Fatalf("expected lock entries to be released, %d remain", len(locks.locks))
	}
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	var locks keyLock
	unlockA := locks.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()
	<-done
	unlockA()
}
