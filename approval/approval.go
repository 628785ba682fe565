// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package approval

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quorum-bot/keymutex"
	"github.com/danielhkuo/quorum-bot/models"
	"github.com/danielhkuo/quorum-bot/store"
)

var (
	ErrNotFound       = errors.New("no approval workflow for this cart")
	ErrAlreadyExists  = errors.New("approval workflow already exists for this cart")
	ErrSelfNomination = errors.New("approver cannot be added by themselves")
	ErrNotApprover    = errors.New("user is not a registered approver")
	ErrClearFailed    = errors.New("cart could not be cleared")
)

const (
	subjectsTable  = "approvals"
	approversTable = "approvers"
)

// registryKey serializes approver registry mutations in the lock arena.
const registryKey = "\x00approvers"

// Clearer clears the external resource a concluded workflow is scoped to.
// Implemented by the cart manager.
type Clearer interface {
	Clear(resourceKey string) error
}

// Manager runs the unanimous-approval workflow and administers the
// process-wide approver registry. The registry is shared across all
// subjects and is read live: completion is measured against the registry
// as it is at check time, not as it was when the subject began.
type Manager struct {
	store store.Store
	locks *keymutex.Arena
}

func NewManager(s store.Store) *Manager {
	return &Manager{store: s, locks: keymutex.New()}
}

// Begin opens the approval workflow for a cart. At most one active subject
// may exist per cart. token is the opaque announcement timestamp the
// platform routes reactions back through.
func (m *Manager) Begin(cartName, token string) (models.ApprovalSubject, error) {
	unlock := m.locks.Lock(cartName)
	defer unlock()

	_, exists, err := m.store.Get(subjectsTable, cartName)
	if err != nil {
		return models.ApprovalSubject{}, fmt.Errorf("failed to check approval subject: %w", err)
	}
	if exists {
		return models.ApprovalSubject{}, ErrAlreadyExists
	}

	s := models.ApprovalSubject{
		CartName:  cartName,
		MessageTS: token,
		BegunAt:   time.Now(),
		Approvals: []models.Approval{},
	}
	if err := m.store.Put(subjectsTable, cartName, s); err != nil {
		return models.ApprovalSubject{}, fmt.Errorf("failed to persist approval subject: %w", err)
	}

	slog.Info("approval workflow begun", "cart", cartName, "ts", token)
	return s, nil
}

// Get loads the active subject for a cart.
func (m *Manager) Get(cartName string) (models.ApprovalSubject, error) {
	raw, ok, err := m.store.Get(subjectsTable, cartName)
	if err != nil {
		return models.ApprovalSubject{}, fmt.Errorf("failed to load approval subject: %w", err)
	}
	if !ok {
		return models.ApprovalSubject{}, ErrNotFound
	}
	var s models.ApprovalSubject
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.ApprovalSubject{}, fmt.Errorf("failed to decode approval subject: %w", err)
	}
	return s, nil
}

// FindByToken locates the active subject whose announcement token matches.
// Used to resolve which cart a reaction event refers to; a miss just means
// the reaction was on an unrelated message.
func (m *Manager) FindByToken(token string) (models.ApprovalSubject, bool, error) {
	docs, err := m.store.List(subjectsTable)
	if err != nil {
		return models.ApprovalSubject{}, false, fmt.Errorf("failed to list approval subjects: %w", err)
	}
	for _, doc := range docs {
		var s models.ApprovalSubject
		if err := json.Unmarshal(doc, &s); err != nil {
			return models.ApprovalSubject{}, false, fmt.Errorf("failed to decode approval subject: %w", err)
		}
		if s.MessageTS == token {
			return s, true, nil
		}
	}
	return models.ApprovalSubject{}, false, nil
}

// Add appends an approval. Duplicate entries from the same approver are
// appended as given; the platform's one-reaction-per-user semantics are
// what keep them out in practice, and callers that want a guard check
// HasApproval themselves.
func (m *Manager) Add(cartName string, approver models.User, timestamp string) error {
	unlock := m.locks.Lock(cartName)
	defer unlock()

	s, err := m.Get(cartName)
	if err != nil {
		return err
	}
	s.Approvals = append(s.Approvals, models.Approval{Approver: approver, Timestamp: timestamp})
	if err := m.store.Put(subjectsTable, cartName, s); err != nil {
		return fmt.Errorf("failed to persist approval: %w", err)
	}

	slog.Info("approval added", "cart", cartName, "approver_id", approver.ID)
	return nil
}

// Remove retracts the first approval entry matching the approver id.
// Returns false if the subject is missing or the approver has no entry.
func (m *Manager) Remove(cartName, approverID string) (bool, error) {
	unlock := m.locks.Lock(cartName)
	defer unlock()

	s, err := m.Get(cartName)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	for i, a := range s.Approvals {
		if a.Approver.ID == approverID {
			s.Approvals = append(s.Approvals[:i], s.Approvals[i+1:]...)
			if err := m.store.Put(subjectsTable, cartName, s); err != nil {
				return false, fmt.Errorf("failed to persist retraction: %w", err)
			}
			slog.Info("approval retracted", "cart", cartName, "approver_id", approverID)
			return true, nil
		}
	}
	return false, nil
}

// IsComplete reports unanimity: the subject holds as many approvals as the
// registry holds approvers, measured right now. Registering a new approver
// mid-workflow raises the bar; removing one can complete an already
// satisfied subject.
func (m *Manager) IsComplete(cartName string) (bool, error) {
	s, err := m.Get(cartName)
	if err != nil {
		return false, err
	}
	approvers, err := m.Approvers()
	if err != nil {
		return false, err
	}
	return len(s.Approvals) == len(approvers), nil
}

// ConcludeAndClear clears the cart through the supplied Clearer and, only
// if that succeeds, deletes the subject. On a clear failure the subject
// stays in place and ErrClearFailed surfaces; nothing retries
// automatically.
func (m *Manager) ConcludeAndClear(cartName string, clearer Clearer) error {
	unlock := m.locks.Lock(cartName)
	defer unlock()

	if _, err := m.Get(cartName); err != nil {
		return err
	}
	if err := clearer.Clear(cartName); err != nil {
		return fmt.Errorf("%w: %w", ErrClearFailed, err)
	}
	if _, err := m.store.Delete(subjectsTable, cartName); err != nil {
		return fmt.Errorf("failed to delete approval subject: %w", err)
	}

	slog.Info("approval workflow concluded", "cart", cartName)
	return nil
}

// Abort deletes the subject without clearing the cart, abandoning the
// workflow. The cart and its items are untouched.
func (m *Manager) Abort(cartName string) (bool, error) {
	unlock := m.locks.Lock(cartName)
	defer unlock()

	found, err := m.store.Delete(subjectsTable, cartName)
	if err != nil {
		return false, fmt.Errorf("failed to abort approval subject: %w", err)
	}
	return found, nil
}

// AddApprover registers a user in the approver registry. Self-nomination
// is rejected; someone else has to vouch.
func (m *Manager) AddApprover(approver, addedBy models.User) error {
	if approver.ID == addedBy.ID {
		return ErrSelfNomination
	}

	unlock := m.locks.Lock(registryKey)
	defer unlock()

	entry := models.ApproverEntry{Approver: approver, AddedBy: addedBy}
	if err := m.store.Put(approversTable, approver.ID, entry); err != nil {
		return fmt.Errorf("failed to persist approver: %w", err)
	}

	slog.Info("approver added", "approver_id", approver.ID, "added_by", addedBy.ID)
	return nil
}

// RemoveApprover drops a user from the registry. Returns ErrNotApprover if
// they were never registered.
func (m *Manager) RemoveApprover(approverID string) error {
	unlock := m.locks.Lock(registryKey)
	defer unlock()

	found, err := m.store.Delete(approversTable, approverID)
	if err != nil {
		return fmt.Errorf("failed to remove approver: %w", err)
	}
	if !found {
		return ErrNotApprover
	}

	slog.Info("approver removed", "approver_id", approverID)
	return nil
}

// Approvers returns the current registry members.
func (m *Manager) Approvers() ([]models.User, error) {
	docs, err := m.store.List(approversTable)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		var entry models.ApproverEntry
		if err := json.Unmarshal(doc, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode approver: %w", err)
		}
		users = append(users, entry.Approver)
	}
	return users, nil
}

// Approver looks up a registry member by id.
func (m *Manager) Approver(approverID string) (models.User, bool, error) {
	raw, ok, err := m.store.Get(approversTable, approverID)
	if err != nil {
		return models.User{}, false, fmt.Errorf("failed to load approver: %w", err)
	}
	if !ok {
		return models.User{}, false, nil
	}
	var entry models.ApproverEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return models.User{}, false, fmt.Errorf("failed to decode approver: %w", err)
	}
	return entry.Approver, true, nil
}
