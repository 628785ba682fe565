// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quorum

import (
	"testing"

	"github.com/danielhkuo/quorum-bot/models"
)

func voters(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "U" + string(rune('A'+i))
	}
	return ids
}

func votes(eid string, yes, no int) []models.Vote {
	var vs []models.Vote
	for i := 0; i < yes; i++ {
		vs = append(vs, models.Vote{VoterID: "Y" + string(rune('A'+i)), ElectionID: eid, Yes: true})
	}
	for i := 0; i < no; i++ {
		vs = append(vs, models.Vote{VoterID: "N" + string(rune('A'+i)), ElectionID: eid, Yes: false})
	}
	return vs
}

func TestCountBinaryVotes(t *testing.T) {
	yes, no := CountBinaryVotes(votes("e", 3, 2))
	if yes != 3 || no != 2 {
		t.Errorf("Expected 3/2, got %d/%d", yes, no)
	}

	yes, no = CountBinaryVotes(nil)
	if yes != 0 || no != 0 {
		t.Errorf("Expected 0/0 for empty set, got %d/%d", yes, no)
	}
}

func TestThresholdSplitCases(t *testing.T) {
	cases := []struct {
		pct, n               int
		yesToPass, noToFail  int
	}{
		{50, 4, 2, 2},
		{60, 5, 3, 2},
		{100, 3, 3, 0},
		{1, 1, 1, 0},
		{1, 100, 1, 99},
		{99, 100, 99, 1},
		{10, 5, 1, 4},  // floor(0.5) clamped up to 1
		{51, 10, 5, 5}, // floor(5.1) = 5
	}
	for _, c := range cases {
		yesToPass, noToFail := ThresholdSplit(c.pct, c.n)
		if yesToPass != c.yesToPass || noToFail != c.noToFail {
			t.Errorf("ThresholdSplit(%d, %d) = (%d, %d), expected (%d, %d)",
				c.pct, c.n, yesToPass, noToFail, c.yesToPass, c.noToFail)
		}
	}
}

// TestThresholdSplitInvariants exercises the full p/n grid: yesToPass is
// always floor(p*n/100) clamped to at least 1, and noToFail is always the
// complement clamped to at least 0.
func TestThresholdSplitInvariants(t *testing.T) {
	for p := 1; p <= 100; p++ {
		for n := 1; n <= 40; n++ {
			yesToPass, noToFail := ThresholdSplit(p, n)

			expectedYes := p * n / 100
			if expectedYes < 1 {
				expectedYes = 1
			}
			if yesToPass != expectedYes {
				t.Fatalf("ThresholdSplit(%d, %d): yesToPass = %d, expected %d", p, n, yesToPass, expectedYes)
			}
			if yesToPass < 1 || yesToPass > n {
				t.Fatalf("ThresholdSplit(%d, %d): yesToPass %d out of range", p, n, yesToPass)
			}
			if noToFail != n-yesToPass {
				t.Fatalf("ThresholdSplit(%d, %d): noToFail = %d, expected %d", p, n, noToFail, n-yesToPass)
			}
		}
	}
}

func TestEvaluateStandardPass(t *testing.T) {
	// N=4, threshold 50%: yesToPass=2, noToFail=2. yes,yes,no finishes and passes.
	e := models.Election{ID: "e1", ThresholdPct: 50, AllowedVoterIDs: voters(4)}
	r := Evaluate(e, votes("e1", 2, 1))

	if !r.IsFinished {
		t.Error("Expected finished")
	}
	if !r.IsPassed {
		t.Error("Expected passed")
	}
	if r.NumYes != 2 || r.NumNo != 1 || r.ReportingVoters != 3 || r.NumVoters != 4 {
		t.Errorf("Unexpected counts: %+v", r)
	}
	if r.VotePct != 67 { // round(100*2/3)
		t.Errorf("Expected votePct 67, got %d", r.VotePct)
	}
	if r.ReportingPct != 75 {
		t.Errorf("Expected reportingPct 75, got %d", r.ReportingPct)
	}
}

func TestEvaluateEarlyTermination(t *testing.T) {
	// N=5, threshold 60%: yesToPass=3, noToFail=2. Three no votes end it
	// with zero yes votes and two voters silent.
	e := models.Election{ID: "e2", ThresholdPct: 60, AllowedVoterIDs: voters(5)}
	r := Evaluate(e, votes("e2", 0, 3))

	if !r.IsFinished {
		t.Error("Expected early termination once no side wins")
	}
	if r.IsPassed {
		t.Error("Expected failed election")
	}
}

func TestEvaluateNotYetFinished(t *testing.T) {
	e := models.Election{ID: "e3", ThresholdPct: 60, AllowedVoterIDs: voters(5)}
	r := Evaluate(e, votes("e3", 2, 2))

	if r.IsFinished {
		t.Error("Expected unfinished: 2 yes of 3 needed, 2 no of >2 needed")
	}
	if r.IsPassed {
		t.Error("Expected not passed")
	}
}

func TestEvaluateUnanimousThreshold(t *testing.T) {
	e := models.Election{ID: "e4", ThresholdPct: 100, AllowedVoterIDs: voters(3)}

	r := Evaluate(e, votes("e4", 2, 0))
	if r.IsFinished {
		t.Error("Expected unfinished at 2/3 yes")
	}

	r = Evaluate(e, votes("e4", 0, 1))
	if !r.IsFinished || r.IsPassed {
		t.Error("Expected a single no to fail a 100% election")
	}

	r = Evaluate(e, votes("e4", 3, 0))
	if !r.IsFinished || !r.IsPassed {
		t.Error("Expected 3/3 yes to pass")
	}
}

func TestEvaluateZeroReporting(t *testing.T) {
	e := models.Election{ID: "e5", ThresholdPct: 50, AllowedVoterIDs: voters(4)}
	r := Evaluate(e, nil)

	if r.VotePct != 0 || r.ReportingPct != 0 {
		t.Errorf("Expected zero percentages with no votes, got %d/%d", r.VotePct, r.ReportingPct)
	}
	if r.IsFinished {
		t.Error("Expected unfinished with no votes")
	}
}

func TestEvaluateDoesNotMutate(t *testing.T) {
	e := models.Election{ID: "e6", ThresholdPct: 50, AllowedVoterIDs: voters(2)}
	vs := votes("e6", 1, 1)

	Evaluate(e, vs)

	if e.Finished {
		t.Error("Evaluate mutated the election")
	}
	if len(vs) != 2 || !vs[0].Yes || vs[1].Yes {
		t.Error("Evaluate mutated the vote set")
	}
}

// TestEvaluateFinishAgreement checks finished/passed consistency over a
// sweep: passed implies finished, and a passed result never coexists with
// numNo > noToFail.
func TestEvaluateFinishAgreement(t *testing.T) {
	for p := 1; p <= 100; p += 3 {
		for n := 1; n <= 12; n++ {
			for yes := 0; yes <= n; yes++ {
				for no := 0; yes+no <= n; no++ {
					e := models.Election{ThresholdPct: p, AllowedVoterIDs: voters(n)}
					r := Evaluate(e, votes("e", yes, no))

					if r.IsPassed && !r.IsFinished {
						t.Fatalf("p=%d n=%d yes=%d no=%d: passed but not finished", p, n, yes, no)
					}
					yesToPass, noToFail := ThresholdSplit(p, n)
					if r.IsPassed && (yes < yesToPass || no > noToFail) {
						t.Fatalf("p=%d n=%d yes=%d no=%d: passed incorrectly", p, n, yes, no)
					}
				}
			}
		}
	}
}
