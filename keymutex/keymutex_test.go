// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package keymutex

import (
	"sync"
	"testing"
	"time"
)

func TestSameKeySerializes(t *testing.T) {
	a := New()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := a.Lock("shared")
			defer unlock()
			// Unsynchronized increment; only safe if the lock works.
			c := counter
			counter = c + 1
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("Expected %d increments, got %d (lost updates)", workers, counter)
	}
}

func TestDifferentKeysIndependent(t *testing.T) {
	a := New()

	unlockA := a.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := a.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Lock on a different key blocked")
	}
}

func TestReacquireAfterUnlock(t *testing.T) {
	a := New()

	unlock := a.Lock("k")
	unlock()

	done := make(chan struct{})
	go func() {
		unlock := a.Lock("k")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Lock was not released")
	}
}
