// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package keymutex provides a per-key mutex arena.

The decision managers use it to serialize read-modify-write sequences for a
single decision id or cart name. Without it, two concurrent vote
submissions for the same voter could both pass the "not already voted"
check before either persists, and two concurrent finalizations could both
observe an unfinished election and both report the transition.

	var locks = keymutex.New()

	unlock := locks.Lock(electionID)
	defer unlock()
*/
package keymutex
