// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quorum-bot/auth"
	"github.com/danielhkuo/quorum-bot/keymutex"
	"github.com/danielhkuo/quorum-bot/models"
	"github.com/danielhkuo/quorum-bot/quorum"
	"github.com/danielhkuo/quorum-bot/store"
)

// Business errors. These are expected outcomes returned to the caller for
// user-visible messaging, never wrapped storage failures.
var (
	ErrNotFound         = errors.New("election not found")
	ErrAlreadyFinished  = errors.New("election has already finished")
	ErrNotAllowedVoter  = errors.New("voter is not in the allowed voter list")
	ErrAlreadyVoted     = errors.New("voter has already voted in this election")
	ErrInvalidThreshold = errors.New("threshold must be between 1 and 100")
	ErrNoVoters         = errors.New("allowed voter list must not be empty")
	ErrNotAuthorized    = errors.New("only the creator may view an unfinished election")
)

const electionsTable = "elections"

// electionIDBytes gives 64 bits of id entropy (16 hex chars).
const electionIDBytes = 8

func votesTable(electionID string) string {
	return "votes/" + electionID
}

// Manager is the election lifecycle controller. It owns every transition of
// an election's Finished flag and serializes all read-modify-write
// sequences per election id.
type Manager struct {
	store store.Store
	locks *keymutex.Arena
}

func NewManager(s store.Store) *Manager {
	return &Manager{store: s, locks: keymutex.New()}
}

// Create validates and persists a new election with an empty vote set.
func (m *Manager) Create(electeeID, position string, thresholdPct int, allowedVoterIDs []string, creatorID string) (models.Election, error) {
	if thresholdPct < 1 || thresholdPct > 100 {
		return models.Election{}, ErrInvalidThreshold
	}
	if len(allowedVoterIDs) == 0 {
		return models.Election{}, ErrNoVoters
	}

	id, err := m.freshID()
	if err != nil {
		return models.Election{}, err
	}

	e := models.Election{
		ID:              id,
		ElecteeID:       electeeID,
		Position:        position,
		ThresholdPct:    thresholdPct,
		AllowedVoterIDs: allowedVoterIDs,
		CreatorID:       creatorID,
	}
	if err := m.store.Put(electionsTable, id, e); err != nil {
		return models.Election{}, fmt.Errorf("failed to persist election: %w", err)
	}

	slog.Info("election created", "election_id", id, "threshold_pct", thresholdPct, "num_voters", len(allowedVoterIDs))
	return e, nil
}

// freshID draws ids until one does not collide with a stored election.
// With 64-bit ids the loop effectively never repeats.
func (m *Manager) freshID() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id, err := auth.GenerateID(electionIDBytes)
		if err != nil {
			return "", err
		}
		_, exists, err := m.store.Get(electionsTable, id)
		if err != nil {
			return "", fmt.Errorf("failed to check election id: %w", err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", errors.New("failed to generate a unique election id")
}

// Get loads an election by id.
func (m *Manager) Get(electionID string) (models.Election, error) {
	raw, ok, err := m.store.Get(electionsTable, electionID)
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to load election: %w", err)
	}
	if !ok {
		return models.Election{}, ErrNotFound
	}
	var e models.Election
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.Election{}, fmt.Errorf("failed to decode election: %w", err)
	}
	return e, nil
}

// Votes loads the current vote set for an election.
func (m *Manager) Votes(electionID string) ([]models.Vote, error) {
	docs, err := m.store.List(votesTable(electionID))
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	votes := make([]models.Vote, 0, len(docs))
	for _, doc := range docs {
		var v models.Vote
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("failed to decode vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, nil
}

// SubmitVote accepts one voter's yes/no and returns the confirmation
// token. Checks run in order, first match wins: not found, already
// finished, not an allowed voter, already voted. Re-delivery of the same
// click deterministically returns ErrAlreadyVoted; a voter can never hold
// two votes.
func (m *Manager) SubmitVote(electionID, voterID string, yes bool) (string, error) {
	unlock := m.locks.Lock(electionID)
	defer unlock()

	e, err := m.Get(electionID)
	if err != nil {
		return "", err
	}
	if e.Finished {
		return "", ErrAlreadyFinished
	}
	if !e.AllowsVoter(voterID) {
		return "", ErrNotAllowedVoter
	}

	_, voted, err := m.store.Get(votesTable(electionID), voterID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing vote: %w", err)
	}
	if voted {
		return "", ErrAlreadyVoted
	}

	v := models.Vote{
		VoterID:      voterID,
		ElectionID:   electionID,
		Yes:          yes,
		Confirmation: auth.NewConfirmation(),
	}
	if err := m.store.Put(votesTable(electionID), voterID, v); err != nil {
		return "", fmt.Errorf("failed to persist vote: %w", err)
	}

	slog.Info("vote recorded", "election_id", electionID, "voter_id", voterID, "choice", v.Choice())
	return v.Confirmation, nil
}

// Evaluate computes the current quorum result without mutating anything.
func (m *Manager) Evaluate(electionID string) (quorum.Result, error) {
	e, err := m.Get(electionID)
	if err != nil {
		return quorum.Result{}, err
	}
	votes, err := m.Votes(electionID)
	if err != nil {
		return quorum.Result{}, err
	}
	return quorum.Evaluate(e, votes), nil
}

// FinalizeIfDone evaluates the election and, if it is finished but not yet
// marked so, performs the one-way transition. transitioned is true for
// exactly one caller per election ever; it is the sole signal for emitting
// the one-time concluded announcement.
func (m *Manager) FinalizeIfDone(electionID string) (quorum.Result, bool, error) {
	unlock := m.locks.Lock(electionID)
	defer unlock()

	e, err := m.Get(electionID)
	if err != nil {
		return quorum.Result{}, false, err
	}
	votes, err := m.Votes(electionID)
	if err != nil {
		return quorum.Result{}, false, err
	}
	res := quorum.Evaluate(e, votes)

	if !res.IsFinished || e.Finished {
		res.Election = e
		return res, false, nil
	}

	e.Finished = true
	if err := m.store.Put(electionsTable, electionID, e); err != nil {
		return quorum.Result{}, false, fmt.Errorf("failed to finalize election: %w", err)
	}
	res.Election = e

	slog.Info("election finished", "election_id", electionID, "passed", res.IsPassed,
		"num_yes", res.NumYes, "num_no", res.NumNo)
	return res, true, nil
}

// ConfirmVote reports whether exactly one stored vote for the election
// carries the given confirmation token. Read-only and safe to repeat.
func (m *Manager) ConfirmVote(electionID, confirmation string) (bool, error) {
	if _, err := m.Get(electionID); err != nil {
		return false, err
	}
	votes, err := m.Votes(electionID)
	if err != nil {
		return false, err
	}
	matches := 0
	for _, v := range votes {
		if v.Confirmation == confirmation {
			matches++
		}
	}
	return matches == 1, nil
}

// CheckResult returns the live tally. While the election is open only the
// creator may look; once finished the result is public.
func (m *Manager) CheckResult(electionID, requestorID string) (quorum.Result, error) {
	e, err := m.Get(electionID)
	if err != nil {
		return quorum.Result{}, err
	}
	if !e.Finished && requestorID != e.CreatorID {
		return quorum.Result{}, ErrNotAuthorized
	}
	votes, err := m.Votes(electionID)
	if err != nil {
		return quorum.Result{}, err
	}
	return quorum.Evaluate(e, votes), nil
}
