// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package approval

import (
	"errors"
	"sync"
	"testing"

	"github.com/danielhkuo/quorum-bot/models"
	"github.com/danielhkuo/quorum-bot/testutil"
)

var (
	alice = models.User{Name: "alice", ID: "UA"}
	bob   = models.User{Name: "bob", ID: "UB"}
	carol = models.User{Name: "carol", ID: "UC"}
	dave  = models.User{Name: "dave", ID: "UD"}
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(testutil.SetupTestStore(t))
}

// fakeClearer records clear calls and can be told to fail.
type fakeClearer struct {
	mu      sync.Mutex
	cleared []string
	fail    error
}

func (f *fakeClearer) Clear(resourceKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.cleared = append(f.cleared, resourceKey)
	return nil
}

func TestBeginRejectsDuplicate(t *testing.T) {
	m := newTestManager(t)

	s, err := m.Begin("tools", "100.1")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if s.CartName != "tools" || s.MessageTS != "100.1" || len(s.Approvals) != 0 {
		t.Errorf("Unexpected subject: %+v", s)
	}

	if _, err := m.Begin("tools", "100.2"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	// A different cart is unaffected.
	if _, err := m.Begin("parts", "100.3"); err != nil {
		t.Errorf("Begin for another cart failed: %v", err)
	}
}

func TestAddAndRemoveApproval(t *testing.T) {
	m := newTestManager(t)
	m.Begin("tools", "100.1")

	if err := m.Add("missing", alice, "1.0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := m.Add("tools", alice, "1.0"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Add("tools", bob, "2.0"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s, _ := m.Get("tools")
	if len(s.Approvals) != 2 {
		t.Fatalf("Expected 2 approvals, got %d", len(s.Approvals))
	}
	// Order of arrival is preserved.
	if s.Approvals[0].Approver.ID != "UA" || s.Approvals[1].Approver.ID != "UB" {
		t.Errorf("Approval order lost: %+v", s.Approvals)
	}

	found, err := m.Remove("tools", "UA")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !found {
		t.Error("Expected removal to report found")
	}

	s, _ = m.Get("tools")
	if len(s.Approvals) != 1 || s.Approvals[0].Approver.ID != "UB" {
		t.Errorf("Unexpected approvals after removal: %+v", s.Approvals)
	}

	found, _ = m.Remove("tools", "UA")
	if found {
		t.Error("Expected second removal to report not found")
	}
	found, _ = m.Remove("missing", "UA")
	if found {
		t.Error("Expected removal on missing subject to report not found")
	}
}

func TestRemoveFirstMatchingEntry(t *testing.T) {
	m := newTestManager(t)
	m.Begin("tools", "100.1")

	// Duplicates are appended as given; Remove takes the first.
	m.Add("tools", alice, "1.0")
	m.Add("tools", alice, "2.0")

	m.Remove("tools", "UA")

	s, _ := m.Get("tools")
	if len(s.Approvals) != 1 || s.Approvals[0].Timestamp != "2.0" {
		t.Errorf("Expected the first entry removed, got %+v", s.Approvals)
	}
}

func TestIsCompleteDynamicRegistry(t *testing.T) {
	m := newTestManager(t)
	m.AddApprover(alice, dave)
	m.AddApprover(bob, dave)
	m.Begin("tools", "100.1")

	complete, err := m.IsComplete("tools")
	if err != nil {
		t.Fatalf("IsComplete failed: %v", err)
	}
	if complete {
		t.Error("Expected incomplete with 0 of 2 approvals")
	}

	m.Add("tools", alice, "1.0")
	m.Add("tools", bob, "2.0")

	complete, _ = m.IsComplete("tools")
	if !complete {
		t.Error("Expected complete with 2 of 2 approvals")
	}

	// A third approver registered mid-workflow raises the bar.
	m.AddApprover(carol, dave)
	complete, _ = m.IsComplete("tools")
	if complete {
		t.Error("Expected incomplete after registry grew")
	}

	// The new approver signs off.
	m.Add("tools", carol, "3.0")
	complete, _ = m.IsComplete("tools")
	if !complete {
		t.Error("Expected complete after third approval")
	}

	// Removing an approver can also complete a subject.
	m.Remove("tools", "UC")
	m.RemoveApprover("UC")
	complete, _ = m.IsComplete("tools")
	if !complete {
		t.Error("Expected complete after registry shrank")
	}
}

func TestRetractionAfterCompletenessCheck(t *testing.T) {
	m := newTestManager(t)
	m.AddApprover(alice, dave)
	m.Begin("tools", "100.1")
	m.Add("tools", alice, "1.0")

	complete, _ := m.IsComplete("tools")
	if !complete {
		t.Fatal("Expected complete")
	}

	// Retraction lands between the check and the conclusion; the next
	// check must see it.
	m.Remove("tools", "UA")

	complete, _ = m.IsComplete("tools")
	if complete {
		t.Error("Expected incomplete after retraction")
	}
}

func TestConcludeAndClear(t *testing.T) {
	m := newTestManager(t)
	m.Begin("tools", "100.1")

	clearer := &fakeClearer{}
	if err := m.ConcludeAndClear("tools", clearer); err != nil {
		t.Fatalf("ConcludeAndClear failed: %v", err)
	}
	if len(clearer.cleared) != 1 || clearer.cleared[0] != "tools" {
		t.Errorf("Expected cart cleared once, got %v", clearer.cleared)
	}

	// Subject is gone; a new workflow can begin.
	if _, err := m.Get("tools"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected subject deleted, got %v", err)
	}
	if _, err := m.Begin("tools", "200.1"); err != nil {
		t.Errorf("Expected new workflow to begin, got %v", err)
	}
}

func TestConcludeAndClearFailureKeepsSubject(t *testing.T) {
	m := newTestManager(t)
	m.Begin("tools", "100.1")

	clearer := &fakeClearer{fail: errors.New("cart store down")}
	err := m.ConcludeAndClear("tools", clearer)
	if !errors.Is(err, ErrClearFailed) {
		t.Fatalf("Expected ErrClearFailed, got %v", err)
	}

	// Subject survives for a manual retry.
	if _, err := m.Get("tools"); err != nil {
		t.Errorf("Expected subject kept after failed clear, got %v", err)
	}

	// Retry after the fault clears.
	clearer.fail = nil
	if err := m.ConcludeAndClear("tools", clearer); err != nil {
		t.Errorf("Retry failed: %v", err)
	}
}

func TestConcludeAndClearMissingSubject(t *testing.T) {
	m := newTestManager(t)

	err := m.ConcludeAndClear("missing", &fakeClearer{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAbort(t *testing.T) {
	m := newTestManager(t)
	m.Begin("tools", "100.1")

	found, err := m.Abort("tools")
	if err != nil || !found {
		t.Fatalf("Abort failed: found=%v err=%v", found, err)
	}
	if _, err := m.Get("tools"); !errors.Is(err, ErrNotFound) {
		t.Error("Expected subject gone after abort")
	}
	found, _ = m.Abort("tools")
	if found {
		t.Error("Expected second abort to report not found")
	}
}

func TestApproverRegistryAdmin(t *testing.T) {
	m := newTestManager(t)

	if err := m.AddApprover(alice, alice); !errors.Is(err, ErrSelfNomination) {
		t.Errorf("Expected ErrSelfNomination, got %v", err)
	}

	if err := m.AddApprover(alice, dave); err != nil {
		t.Fatalf("AddApprover failed: %v", err)
	}
	if err := m.AddApprover(bob, dave); err != nil {
		t.Fatalf("AddApprover failed: %v", err)
	}

	approvers, err := m.Approvers()
	if err != nil {
		t.Fatalf("Approvers failed: %v", err)
	}
	if len(approvers) != 2 {
		t.Errorf("Expected 2 approvers, got %d", len(approvers))
	}

	got, ok, err := m.Approver("UA")
	if err != nil || !ok {
		t.Fatalf("Approver lookup failed: ok=%v err=%v", ok, err)
	}
	if got.Name != "alice" {
		t.Errorf("Expected alice, got %+v", got)
	}

	if err := m.RemoveApprover("UX"); !errors.Is(err, ErrNotApprover) {
		t.Errorf("Expected ErrNotApprover, got %v", err)
	}
	if err := m.RemoveApprover("UA"); err != nil {
		t.Fatalf("RemoveApprover failed: %v", err)
	}

	approvers, _ = m.Approvers()
	if len(approvers) != 1 || approvers[0].ID != "UB" {
		t.Errorf("Expected only bob to remain, got %+v", approvers)
	}
}

// TestConcurrentRegistryMutation verifies add/remove operations do not lose
// updates under parallel callers.
func TestConcurrentRegistryMutation(t *testing.T) {
	m := newTestManager(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := models.User{Name: "user", ID: "U" + string(rune('a'+i))}
			if err := m.AddApprover(u, dave); err != nil {
				t.Errorf("AddApprover failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	approvers, err := m.Approvers()
	if err != nil {
		t.Fatalf("Approvers failed: %v", err)
	}
	if len(approvers) != n {
		t.Errorf("Expected %d approvers, got %d (lost updates)", n, len(approvers))
	}
}

func TestFindByToken(t *testing.T) {
	m := newTestManager(t)
	m.Begin("tools", "100.1")
	m.Begin("parts", "200.2")

	s, ok, err := m.FindByToken("200.2")
	if err != nil || !ok {
		t.Fatalf("FindByToken failed: ok=%v err=%v", ok, err)
	}
	if s.CartName != "parts" {
		t.Errorf("Expected parts, got %s", s.CartName)
	}

	_, ok, _ = m.FindByToken("999.9")
	if ok {
		t.Error("Expected no subject for unknown token")
	}
}
