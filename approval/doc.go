// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package approval is the lifecycle controller for unanimous purchase
approvals.

# Model

Each cart under purchase gets at most one active ApprovalSubject. Approvers
sign off by reacting to the announcement message; approvals are revocable.
The subject is complete when its approval count equals the size of the
process-wide approver registry.

# Dynamic threshold

Unlike elections, the quorum size is not snapshotted at Begin time. The
registry is read live in every IsComplete call, so registering a new
approver mid-workflow raises the bar and removing one can make an already
satisfied subject newly complete. This is a deliberate property of the
workflow, not a race to defend against; only the registry's own add and
remove operations are serialized.

# Conclusion

ConcludeAndClear clears the cart through a Clearer and deletes the subject
only if the clear succeeds. A failed clear leaves the subject in place and
surfaces ErrClearFailed for the caller to retry or abandon manually.
*/
package approval
