// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quorum-bot/approval"
	"github.com/danielhkuo/quorum-bot/blocks"
	"github.com/danielhkuo/quorum-bot/cart"
	"github.com/danielhkuo/quorum-bot/cliparse"
	"github.com/danielhkuo/quorum-bot/middleware"
	"github.com/danielhkuo/quorum-bot/models"
	"github.com/danielhkuo/quorum-bot/notify"
)

// approvalReaction is the emoji approvers answer purchase requests with.
const approvalReaction = "white_check_mark"

type EventHandler struct {
	cfg       cliparse.Config
	approvals *approval.Manager
	carts     *cart.Manager
	notifier  notify.Notifier
}

func NewEventHandler(cfg cliparse.Config, approvals *approval.Manager, carts *cart.Manager, notifier notify.Notifier) *EventHandler {
	return &EventHandler{cfg: cfg, approvals: approvals, carts: carts, notifier: notifier}
}

// Handle handles POST /slack/events: the url_verification handshake plus
// reaction_added / reaction_removed deliveries. Events that do not concern a
// pending purchase request are acknowledged and dropped; a non-200 response
// would only make the platform redeliver them.
func (h *EventHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var body models.EventCallback
	if err := middleware.ParseJSONBody(r, &body); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if body.Type == "url_verification" {
		middleware.JSONResponse(w, http.StatusOK, models.URLVerificationResponse{Challenge: body.Challenge})
		return
	}
	if body.Type != "event_callback" {
		w.WriteHeader(http.StatusOK)
		return
	}

	event := body.Event
	if event.Reaction == approvalReaction &&
		event.Item.Type == "message" &&
		event.Item.Channel == h.cfg.ChannelID {
		switch event.Type {
		case "reaction_added":
			h.reactionAdded(event)
		case "reaction_removed":
			h.reactionRemoved(event)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *EventHandler) reactionAdded(event models.ReactionEvent) {
	// Only registered approvers count; anyone else may react freely.
	approver, ok, err := h.approvals.Approver(event.UserID)
	if err != nil {
		slog.Error("failed to read approver registry", "error", err)
		return
	}
	if !ok {
		return
	}

	subject, ok, err := h.approvals.FindByToken(event.Item.TS)
	if err != nil {
		slog.Error("failed to match reaction to a purchase request", "ts", event.Item.TS, "error", err)
		return
	}
	if !ok {
		return
	}

	// Redelivered events must not double-count an approver.
	if subject.HasApproval(approver.ID) {
		return
	}

	if err := h.approvals.Add(subject.CartName, approver, event.EventTS); err != nil {
		slog.Error("failed to record approval", "cart", subject.CartName, "approver", approver.ID, "error", err)
		return
	}
	slog.Info("approval recorded", "cart", subject.CartName, "approver", approver.ID)

	complete, err := h.approvals.IsComplete(subject.CartName)
	if err != nil {
		slog.Error("failed to check workflow completeness", "cart", subject.CartName, "error", err)
		return
	}
	if !complete {
		return
	}

	h.conclude(subject.CartName)
}

func (h *EventHandler) conclude(cartName string) {
	// Capture the contents and the final approval list before the clear
	// empties them.
	items, err := h.carts.Items(cartName)
	if err != nil {
		slog.Error("failed to read cart before conclusion", "cart", cartName, "error", err)
		return
	}
	subject, err := h.approvals.Get(cartName)
	if err != nil {
		slog.Error("failed to read workflow before conclusion", "cart", cartName, "error", err)
		return
	}
	c, err := h.carts.Get(cartName)
	if err != nil {
		slog.Error("failed to read cart record before conclusion", "cart", cartName, "error", err)
		return
	}

	if err := h.approvals.ConcludeAndClear(cartName, h.carts); err != nil {
		// ErrClearFailed keeps the workflow alive; the next approval event
		// retries the conclusion.
		if errors.Is(err, approval.ErrClearFailed) {
			slog.Error("cart clear failed, workflow kept", "cart", cartName, "error", err)
		} else {
			slog.Error("failed to conclude workflow", "cart", cartName, "error", err)
		}
		return
	}

	slog.Info("purchase approved", "cart", cartName, "approvals", len(subject.Approvals))
	contents := blocks.CartContents(cartName, c.CreatedBy, items)
	if _, err := h.notifier.Announce(blocks.PurchaseApproved(cartName, contents, subject), nil); err != nil {
		slog.Error("failed to announce approved purchase", "cart", cartName, "error", err)
	}
}

func (h *EventHandler) reactionRemoved(event models.ReactionEvent) {
	subject, ok, err := h.approvals.FindByToken(event.Item.TS)
	if err != nil {
		slog.Error("failed to match retraction to a purchase request", "ts", event.Item.TS, "error", err)
		return
	}
	if !ok {
		return
	}

	removed, err := h.approvals.Remove(subject.CartName, event.UserID)
	if err != nil {
		slog.Error("failed to remove approval", "cart", subject.CartName, "user", event.UserID, "error", err)
		return
	}
	if removed {
		slog.Info("approval retracted", "cart", subject.CartName, "approver", event.UserID)
	}
}
