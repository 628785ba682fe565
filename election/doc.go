// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election is the lifecycle controller for threshold elections.

# Lifecycle

An election is created with a fixed voter set and a 1-100 percent
threshold, collects at most one immutable yes/no vote per allowed voter,
and finishes exactly once - either because the yes side met the threshold
or because the no side made passing unreachable. The quorum math itself
lives in package quorum; this package owns validation, persistence, and the
one-way Finished transition.

# Idempotency

SubmitVote is the idempotency boundary against the platform's at-least-once
event delivery: a re-delivered click for a voter who already voted returns
ErrAlreadyVoted, never a second vote. FinalizeIfDone reports
transitioned=true to exactly one caller per election, which is what keeps
the concluded announcement from firing twice.

Both guarantees hold under concurrent callers: every read-modify-write
sequence is serialized per election id through a keymutex.Arena.

# Errors

Business conditions (not found, already voted, not authorized, ...) are
sentinel errors checked with errors.Is. Storage failures are wrapped
separately and indicate a real fault, not a user mistake.
*/
package election
