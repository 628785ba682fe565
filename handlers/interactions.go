// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quorum-bot/auth"
	"github.com/danielhkuo/quorum-bot/blocks"
	"github.com/danielhkuo/quorum-bot/election"
	"github.com/danielhkuo/quorum-bot/middleware"
	"github.com/danielhkuo/quorum-bot/models"
	"github.com/danielhkuo/quorum-bot/notify"
)

type InteractionHandler struct {
	elections *election.Manager
	notifier  notify.Notifier
}

func NewInteractionHandler(elections *election.Manager, notifier notify.Notifier) *InteractionHandler {
	return &InteractionHandler{elections: elections, notifier: notifier}
}

// Handle handles POST /slack/interactions. Vote buttons are the only
// interactive element the bot posts, so every action id is expected to be a
// "{electionID}_yes" / "{electionID}_no" token. The handler always answers
// 200; the user-facing outcome is delivered as an ephemeral message, since
// the platform retries non-200 responses and a retried vote is a duplicate.
func (h *InteractionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	var payload models.InteractionPayload
	if err := json.Unmarshal([]byte(r.PostFormValue("payload")), &payload); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid interaction payload")
		return
	}
	if payload.Type != "block_actions" || len(payload.Actions) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, action := range payload.Actions {
		h.handleVote(payload.User.ID, action.ActionID)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *InteractionHandler) handleVote(voterID, actionID string) {
	electionID, yes, err := auth.ParseActionID(actionID)
	if err != nil {
		slog.Warn("unrecognized action id", "action_id", actionID, "user", voterID)
		return
	}

	confirmation, err := h.elections.SubmitVote(electionID, voterID, yes)
	if err != nil {
		h.tellVoter(voterID, electionID, err)
		return
	}

	e, err := h.elections.Get(electionID)
	if err != nil {
		slog.Error("failed to load election after vote", "election", electionID, "error", err)
		return
	}

	choice := models.ChoiceNo
	if yes {
		choice = models.ChoiceYes
	}
	if err := h.notifier.NotifyParticipant(voterID, "Your vote was recorded.",
		blocks.VoteConfirmation(e, choice, confirmation)); err != nil {
		slog.Error("failed to send vote confirmation", "election", electionID, "voter", voterID, "error", err)
	}

	result, transitioned, err := h.elections.FinalizeIfDone(electionID)
	if err != nil {
		slog.Error("failed to finalize election", "election", electionID, "error", err)
		return
	}
	if !transitioned {
		return
	}

	// Exactly one vote observes the transition, so the result announcement
	// posts exactly once.
	slog.Info("election concluded", "election", electionID, "passed", result.IsPassed)
	if _, err := h.notifier.Announce("The election has concluded.", blocks.ElectionResult(result)); err != nil {
		slog.Error("failed to announce election result", "election", electionID, "error", err)
	}
}

func (h *InteractionHandler) tellVoter(voterID, electionID string, voteErr error) {
	var text string
	switch {
	case errors.Is(voteErr, election.ErrNotFound):
		text = "That election no longer exists."
	case errors.Is(voteErr, election.ErrAlreadyFinished):
		text = "That election has already finished; your vote was not counted."
	case errors.Is(voteErr, election.ErrNotAllowedVoter):
		text = "You are not on the allowed voter list for that election."
	case errors.Is(voteErr, election.ErrAlreadyVoted):
		text = "You have already voted in that election."
	default:
		slog.Error("failed to submit vote", "election", electionID, "voter", voterID, "error", voteErr)
		text = "Something went wrong recording your vote. Please try again."
	}

	if err := h.notifier.NotifyParticipant(voterID, text, nil); err != nil {
		slog.Error("failed to notify voter", "election", electionID, "voter", voterID, "error", err)
	}
}
