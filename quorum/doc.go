// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package quorum is the pure evaluation layer of the decision engine.

Given an election and its current vote set, Evaluate derives counts,
percentages, and the finished/passed verdict. Nothing here touches storage
or mutates state, which is what keeps the threshold math testable in
isolation from the lifecycle managers.

# Threshold rules

For threshold p over n allowed voters:

	yesToPass = max(1, floor(p/100 * n))
	noToFail  = max(0, n - yesToPass)

	finished  = numYes >= yesToPass  OR  numNo > noToFail
	passed    = numYes >= yesToPass  AND numNo <= noToFail

The no side finishing an election early (numNo > noToFail) is deliberate:
once passing is mathematically unreachable there is no reason to wait for
the remaining voters.
*/
package quorum
