// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package keymutex

import "sync"

// Arena serializes critical sections per string key. Operations on
// different keys proceed in parallel; operations on the same key queue.
//
// Entries are retained for the life of the process. The key space here is
// decision ids and cart names, which is small enough that reclamation is
// not worth the bookkeeping.
type Arena struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Arena {
	return &Arena{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function:
//
//	defer a.Lock(key)()
func (a *Arena) Lock(key string) func() {
	a.mu.Lock()
	m, ok := a.locks[key]
	if !ok {
		m = &sync.Mutex{}
		a.locks[key] = m
	}
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}
