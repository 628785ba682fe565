// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quorum

import (
	"math"

	"github.com/danielhkuo/quorum-bot/models"
)

// Result is the derived outcome of an election against its current vote
// set. It is never stored; recompute it from (election, votes) as needed.
type Result struct {
	Election        models.Election
	NumYes          int
	NumNo           int
	NumVoters       int
	ReportingVoters int
	VotePct         int
	ReportingPct    int
	IsFinished      bool
	IsPassed        bool
}

// CountBinaryVotes tallies a vote set into yes and no counts.
func CountBinaryVotes(votes []models.Vote) (yes, no int) {
	for _, v := range votes {
		if v.Yes {
			yes++
		} else {
			no++
		}
	}
	return yes, no
}

// ThresholdSplit computes, for a threshold percentage over n allowed
// voters, how many yes votes pass the election and how many no votes the
// yes side can absorb before passing becomes unreachable.
//
// yesToPass rounds DOWN, but never below 1. noToFail is the remainder of
// the voter set, never below 0. An election finishes early once numNo
// EXCEEDS noToFail; numYes need only MEET yesToPass.
func ThresholdSplit(thresholdPct, n int) (yesToPass, noToFail int) {
	yesToPass = thresholdPct * n / 100
	if yesToPass < 1 {
		yesToPass = 1
	}
	noToFail = n - yesToPass
	if noToFail < 0 {
		noToFail = 0
	}
	return yesToPass, noToFail
}

// Evaluate computes the full quorum result for an election and its vote
// set. Pure: no storage access, no mutation of either argument.
func Evaluate(e models.Election, votes []models.Vote) Result {
	yes, no := CountBinaryVotes(votes)
	n := len(e.AllowedVoterIDs)
	reporting := yes + no

	yesToPass, noToFail := ThresholdSplit(e.ThresholdPct, n)

	r := Result{
		Election:        e,
		NumYes:          yes,
		NumNo:           no,
		NumVoters:       n,
		ReportingVoters: reporting,
		IsFinished:      yes >= yesToPass || no > noToFail,
		IsPassed:        yes >= yesToPass && no <= noToFail,
	}
	if reporting > 0 {
		r.VotePct = int(math.Round(100 * float64(yes) / float64(reporting)))
	}
	if n > 0 {
		r.ReportingPct = int(math.Round(100 * float64(reporting) / float64(n)))
	}
	return r
}
