// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/quorum-bot/approval"
	"github.com/danielhkuo/quorum-bot/auth"
	"github.com/danielhkuo/quorum-bot/blocks"
	"github.com/danielhkuo/quorum-bot/cart"
	"github.com/danielhkuo/quorum-bot/cliparse"
	"github.com/danielhkuo/quorum-bot/election"
	"github.com/danielhkuo/quorum-bot/middleware"
	"github.com/danielhkuo/quorum-bot/models"
	"github.com/danielhkuo/quorum-bot/notify"
)

// commandList drives both dispatch validation and /qb-help output.
var commandList = [][2]string{
	{"/qb-create-cart [name]", "Create an empty cart"},
	{"/qb-add [cart] [part] [qty?]", "Add a part to a cart (qty defaults to 1)"},
	{"/qb-rm [cart] [part]", "Remove a part from a cart"},
	{"/qb-list [cart] [public?]", "List the contents of a cart"},
	{"/qb-list-carts [public?]", "List all carts"},
	{"/qb-clear [cart]", "Empty a cart without buying it"},
	{"/qb-buy [cart]", "Start the purchase approval workflow for a cart"},
	{"/qb-abort [cart]", "Abort a pending purchase approval without clearing the cart"},
	{"/qb-add-approver [@user]", "Register a user as a purchase approver"},
	{"/qb-rm-approver [@user]", "Remove a user from the approver registry"},
	{"/qb-election [@electee] [position] [threshold] [@voter...]", "Start a threshold election"},
	{"/qb-result [election-id]", "Check an election tally (creator only while open)"},
	{"/qb-confirm [election-id] [code]", "Verify a vote confirmation code"},
	{"/qb-help [public?]", "Show this help"},
}

// popPublic strips a trailing "public" token. Listing commands answer
// ephemerally by default; "public" posts the reply in channel.
func popPublic(fields []string) ([]string, bool) {
	if n := len(fields); n > 0 && fields[n-1] == "public" {
		return fields[:n-1], true
	}
	return fields, false
}

type CommandHandler struct {
	cfg       cliparse.Config
	elections *election.Manager
	approvals *approval.Manager
	carts     *cart.Manager
	notifier  notify.Notifier
}

func NewCommandHandler(cfg cliparse.Config, elections *election.Manager, approvals *approval.Manager, carts *cart.Manager, notifier notify.Notifier) *CommandHandler {
	return &CommandHandler{
		cfg:       cfg,
		elections: elections,
		approvals: approvals,
		carts:     carts,
		notifier:  notifier,
	}
}

// Handle handles POST /slack/commands
func (h *CommandHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	cmd := models.SlashCommand{
		Command:     r.PostFormValue("command"),
		Text:        strings.TrimSpace(r.PostFormValue("text")),
		UserID:      r.PostFormValue("user_id"),
		UserName:    r.PostFormValue("user_name"),
		ChannelID:   r.PostFormValue("channel_id"),
		ChannelName: r.PostFormValue("channel_name"),
		ResponseURL: r.PostFormValue("response_url"),
	}

	// The bot operates in one channel only
	if cmd.ChannelName != h.cfg.ChannelName {
		middleware.CommandReply(w, false,
			fmt.Sprintf("This command only works in #%s.", h.cfg.ChannelName), nil)
		return
	}

	slog.Info("command received", "command", cmd.Command, "user", cmd.UserID)

	switch cmd.Command {
	case "/qb-create-cart":
		h.createCart(w, cmd)
	case "/qb-add":
		h.addItem(w, cmd)
	case "/qb-rm":
		h.removeItem(w, cmd)
	case "/qb-list":
		h.listItems(w, cmd)
	case "/qb-list-carts":
		h.listCarts(w, cmd)
	case "/qb-clear":
		h.clearCart(w, cmd)
	case "/qb-buy":
		h.buyCart(w, cmd)
	case "/qb-abort":
		h.abortBuy(w, cmd)
	case "/qb-add-approver":
		h.addApprover(w, cmd)
	case "/qb-rm-approver":
		h.removeApprover(w, cmd)
	case "/qb-election":
		h.createElection(w, cmd)
	case "/qb-result":
		h.checkResult(w, cmd)
	case "/qb-confirm":
		h.confirmVote(w, cmd)
	case "/qb-help":
		_, public := popPublic(strings.Fields(cmd.Text))
		middleware.CommandReply(w, public, blocks.Help(commandList), nil)
	default:
		middleware.CommandReply(w, false,
			fmt.Sprintf("Unknown command %s. Try /qb-help.", cmd.Command), nil)
	}
}

func (h *CommandHandler) createCart(w http.ResponseWriter, cmd models.SlashCommand) {
	name := auth.CleanAlphanumeric(cmd.Text)
	if name == "" {
		middleware.CommandReply(w, false, "Usage: /qb-create-cart [name]", nil)
		return
	}

	if _, err := h.carts.Create(name, cmd.Invoker()); err != nil {
		if errors.Is(err, cart.ErrAlreadyExists) {
			middleware.CommandReply(w, false, fmt.Sprintf("Cart %s already exists.", name), nil)
			return
		}
		slog.Error("failed to create cart", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to create cart.", nil)
		return
	}

	middleware.CommandReply(w, true, fmt.Sprintf("Cart %s created by %s.", name, cmd.Invoker().Mention()), nil)
}

func (h *CommandHandler) addItem(w http.ResponseWriter, cmd models.SlashCommand) {
	fields := strings.Fields(cmd.Text)
	if len(fields) != 2 && len(fields) != 3 {
		middleware.CommandReply(w, false, "Usage: /qb-add [cart] [part] [qty?]", nil)
		return
	}
	qty := 1
	if len(fields) == 3 {
		var err error
		qty, err = strconv.Atoi(fields[2])
		if err != nil || qty <= 0 {
			middleware.CommandReply(w, false, "Quantity must be a positive number.", nil)
			return
		}
	}

	item, err := h.carts.AddItem(fields[0], fields[1], qty, cmd.Invoker())
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			middleware.CommandReply(w, false, fmt.Sprintf("Cart %s does not exist.", fields[0]), nil)
			return
		}
		slog.Error("failed to add item", "cart", fields[0], "part", fields[1], "error", err)
		middleware.CommandReply(w, false, "Failed to add item.", nil)
		return
	}

	middleware.CommandReply(w, false,
		fmt.Sprintf("Added %d x %s to cart %s.", item.Qty, item.Part, fields[0]), nil)
}

func (h *CommandHandler) removeItem(w http.ResponseWriter, cmd models.SlashCommand) {
	fields := strings.Fields(cmd.Text)
	if len(fields) != 2 {
		middleware.CommandReply(w, false, "Usage: /qb-rm [cart] [part]", nil)
		return
	}

	if err := h.carts.RemoveItem(fields[0], fields[1]); err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound):
			middleware.CommandReply(w, false, fmt.Sprintf("Cart %s does not exist.", fields[0]), nil)
		case errors.Is(err, cart.ErrItemNotFound):
			middleware.CommandReply(w, false, fmt.Sprintf("No %s in cart %s.", fields[1], fields[0]), nil)
		default:
			slog.Error("failed to remove item", "cart", fields[0], "part", fields[1], "error", err)
			middleware.CommandReply(w, false, "Failed to remove item.", nil)
		}
		return
	}

	middleware.CommandReply(w, false,
		fmt.Sprintf("Removed %s from cart %s.", fields[1], fields[0]), nil)
}

func (h *CommandHandler) listItems(w http.ResponseWriter, cmd models.SlashCommand) {
	fields, public := popPublic(strings.Fields(cmd.Text))
	if len(fields) != 1 {
		middleware.CommandReply(w, false, "Usage: /qb-list [cart] [public?]", nil)
		return
	}
	name := fields[0]

	if ok, err := h.carts.Exists(name); err != nil {
		slog.Error("failed to check cart", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to list cart.", nil)
		return
	} else if !ok {
		middleware.CommandReply(w, false, fmt.Sprintf("Cart %s does not exist.", name), nil)
		return
	}

	items, err := h.carts.Items(name)
	if err != nil {
		slog.Error("failed to list items", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to list cart.", nil)
		return
	}

	middleware.CommandReply(w, public, blocks.CartContents(name, cmd.Invoker(), items), nil)
}

func (h *CommandHandler) listCarts(w http.ResponseWriter, cmd models.SlashCommand) {
	_, public := popPublic(strings.Fields(cmd.Text))

	carts, err := h.carts.List()
	if err != nil {
		slog.Error("failed to list carts", "error", err)
		middleware.CommandReply(w, false, "Failed to list carts.", nil)
		return
	}

	middleware.CommandReply(w, public, blocks.CartList(cmd.Invoker(), carts), nil)
}

func (h *CommandHandler) clearCart(w http.ResponseWriter, cmd models.SlashCommand) {
	name := strings.TrimSpace(cmd.Text)
	if name == "" {
		middleware.CommandReply(w, false, "Usage: /qb-clear [cart]", nil)
		return
	}

	// A cart under an active approval workflow must be aborted first; clearing
	// it out from under the approvers would approve an empty purchase.
	if _, err := h.approvals.Get(name); err == nil {
		middleware.CommandReply(w, false,
			fmt.Sprintf("Cart %s has a purchase approval in progress and cannot be cleared.", name), nil)
		return
	}

	if err := h.carts.Clear(name); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			middleware.CommandReply(w, false, fmt.Sprintf("Cart %s does not exist.", name), nil)
			return
		}
		slog.Error("failed to clear cart", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to clear cart.", nil)
		return
	}

	middleware.CommandReply(w, true, fmt.Sprintf("Cart %s cleared by %s.", name, cmd.Invoker().Mention()), nil)
}

func (h *CommandHandler) buyCart(w http.ResponseWriter, cmd models.SlashCommand) {
	name := strings.TrimSpace(cmd.Text)
	if name == "" {
		middleware.CommandReply(w, false, "Usage: /qb-buy [cart]", nil)
		return
	}

	if ok, err := h.carts.Exists(name); err != nil {
		slog.Error("failed to check cart", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to read cart.", nil)
		return
	} else if !ok {
		middleware.CommandReply(w, false, fmt.Sprintf("Cart %s does not exist.", name), nil)
		return
	}

	items, err := h.carts.Items(name)
	if err != nil {
		slog.Error("failed to read cart", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to read cart.", nil)
		return
	}
	if len(items) == 0 {
		middleware.CommandReply(w, false, fmt.Sprintf("Cart %s is empty.", name), nil)
		return
	}

	approvers, err := h.approvals.Approvers()
	if err != nil {
		slog.Error("failed to read approver registry", "error", err)
		middleware.CommandReply(w, false, "Failed to read approver registry.", nil)
		return
	}
	if len(approvers) == 0 {
		middleware.CommandReply(w, false,
			"No approvers registered. Add one with /qb-add-approver first.", nil)
		return
	}

	// Short-circuit the common duplicate before announcing anything.
	if subject, err := h.approvals.Get(name); err == nil {
		middleware.CommandReply(w, false, blocks.PendingWorkflow(subject), nil)
		return
	}

	// Announce first: the message timestamp is the token reactions are
	// matched against, so the workflow record cannot exist before it.
	contents := blocks.CartContents(name, cmd.Invoker(), items)
	token, err := h.notifier.Announce(blocks.PurchaseRequest(contents, approvers), nil)
	if err != nil {
		slog.Error("failed to announce purchase request", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to post purchase request.", nil)
		return
	}

	if _, err := h.approvals.Begin(name, token); err != nil {
		// Roll the announcement back; a dangling request message would
		// collect reactions no workflow is listening for.
		if delErr := h.notifier.Delete(token); delErr != nil {
			slog.Error("failed to roll back announcement", "cart", name, "ts", token, "error", delErr)
		}
		if errors.Is(err, approval.ErrAlreadyExists) {
			subject, getErr := h.approvals.Get(name)
			if getErr == nil {
				middleware.CommandReply(w, false, blocks.PendingWorkflow(subject), nil)
				return
			}
		}
		slog.Error("failed to begin approval workflow", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to start approval workflow.", nil)
		return
	}

	slog.Info("approval workflow begun", "cart", name, "ts", token, "by", cmd.UserID)
	middleware.CommandReply(w, false,
		fmt.Sprintf("Purchase request for cart %s posted. Waiting on %d approver(s).", name, len(approvers)), nil)
}

func (h *CommandHandler) abortBuy(w http.ResponseWriter, cmd models.SlashCommand) {
	name := strings.TrimSpace(cmd.Text)
	if name == "" {
		middleware.CommandReply(w, false, "Usage: /qb-abort [cart]", nil)
		return
	}

	subject, err := h.approvals.Get(name)
	if err != nil {
		if errors.Is(err, approval.ErrNotFound) {
			middleware.CommandReply(w, false,
				fmt.Sprintf("Cart %s has no purchase approval in progress.", name), nil)
			return
		}
		slog.Error("failed to read approval subject", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to abort approval workflow.", nil)
		return
	}

	if _, err := h.approvals.Abort(name); err != nil {
		slog.Error("failed to abort approval workflow", "cart", name, "error", err)
		middleware.CommandReply(w, false, "Failed to abort approval workflow.", nil)
		return
	}

	// Take the request message down too; reactions on it are meaningless now.
	if err := h.notifier.Delete(subject.MessageTS); err != nil {
		slog.Error("failed to delete purchase request message", "cart", name, "ts", subject.MessageTS, "error", err)
	}

	slog.Info("approval workflow aborted", "cart", name, "by", cmd.UserID)
	middleware.CommandReply(w, true,
		fmt.Sprintf("Purchase approval for cart %s aborted by %s. The cart is unchanged.", name, cmd.Invoker().Mention()), nil)
}

func (h *CommandHandler) addApprover(w http.ResponseWriter, cmd models.SlashCommand) {
	approver, err := models.ParseUserMention(strings.TrimSpace(cmd.Text))
	if err != nil {
		middleware.CommandReply(w, false, "Usage: /qb-add-approver [@user]", nil)
		return
	}

	if err := h.approvals.AddApprover(approver, cmd.Invoker()); err != nil {
		if errors.Is(err, approval.ErrSelfNomination) {
			middleware.CommandReply(w, false, "You cannot add yourself as an approver.", nil)
			return
		}
		slog.Error("failed to add approver", "approver", approver.ID, "error", err)
		middleware.CommandReply(w, false, "Failed to add approver.", nil)
		return
	}

	middleware.CommandReply(w, true,
		fmt.Sprintf("%s is now a purchase approver (added by %s).", approver.Mention(), cmd.Invoker().Mention()), nil)
}

func (h *CommandHandler) removeApprover(w http.ResponseWriter, cmd models.SlashCommand) {
	approver, err := models.ParseUserMention(strings.TrimSpace(cmd.Text))
	if err != nil {
		middleware.CommandReply(w, false, "Usage: /qb-rm-approver [@user]", nil)
		return
	}

	if err := h.approvals.RemoveApprover(approver.ID); err != nil {
		if errors.Is(err, approval.ErrNotApprover) {
			middleware.CommandReply(w, false,
				fmt.Sprintf("%s is not a registered approver.", approver.Mention()), nil)
			return
		}
		slog.Error("failed to remove approver", "approver", approver.ID, "error", err)
		middleware.CommandReply(w, false, "Failed to remove approver.", nil)
		return
	}

	middleware.CommandReply(w, true,
		fmt.Sprintf("%s is no longer a purchase approver.", approver.Mention()), nil)
}

// createElection parses "/qb-election [@electee] [position...] [threshold] [@voter...]".
// The position may span several words; the threshold is the first bare number
// after it, optionally suffixed with %.
func (h *CommandHandler) createElection(w http.ResponseWriter, cmd models.SlashCommand) {
	const usage = "Usage: /qb-election [@electee] [position] [threshold] [@voter...]"

	fields := strings.Fields(cmd.Text)
	if len(fields) < 4 {
		middleware.CommandReply(w, false, usage, nil)
		return
	}

	electee, err := models.ParseUserMention(fields[0])
	if err != nil {
		middleware.CommandReply(w, false, usage, nil)
		return
	}

	thresholdIdx := -1
	thresholdPct := 0
	for i := 1; i < len(fields); i++ {
		pct, err := strconv.Atoi(strings.TrimSuffix(fields[i], "%"))
		if err == nil {
			thresholdIdx = i
			thresholdPct = pct
			break
		}
	}
	if thresholdIdx < 2 {
		middleware.CommandReply(w, false, usage, nil)
		return
	}
	position := strings.Join(fields[1:thresholdIdx], " ")

	var voterIDs []string
	for _, f := range fields[thresholdIdx+1:] {
		voter, err := models.ParseUserMention(f)
		if err != nil {
			middleware.CommandReply(w, false,
				fmt.Sprintf("%s is not a user mention. %s", f, usage), nil)
			return
		}
		voterIDs = append(voterIDs, voter.ID)
	}

	e, err := h.elections.Create(electee.ID, position, thresholdPct, voterIDs, cmd.UserID)
	if err != nil {
		switch {
		case errors.Is(err, election.ErrInvalidThreshold):
			middleware.CommandReply(w, false, "Threshold must be between 1 and 100.", nil)
		case errors.Is(err, election.ErrNoVoters):
			middleware.CommandReply(w, false, "At least one allowed voter is required.", nil)
		default:
			slog.Error("failed to create election", "error", err)
			middleware.CommandReply(w, false, "Failed to create election.", nil)
		}
		return
	}

	if _, err := h.notifier.Announce("An election has started.", blocks.Election(e)); err != nil {
		slog.Error("failed to announce election", "election", e.ID, "error", err)
		middleware.CommandReply(w, false,
			fmt.Sprintf("Election %s created but the announcement failed to post.", e.ID), nil)
		return
	}

	slog.Info("election created", "election", e.ID, "electee", e.ElecteeID, "creator", cmd.UserID)
	middleware.CommandReply(w, false,
		fmt.Sprintf("Election %s created. Check on it with /qb-result %s.", e.ID, e.ID), nil)
}

func (h *CommandHandler) checkResult(w http.ResponseWriter, cmd models.SlashCommand) {
	electionID := strings.TrimSpace(cmd.Text)
	if electionID == "" {
		middleware.CommandReply(w, false, "Usage: /qb-result [election-id]", nil)
		return
	}

	result, err := h.elections.CheckResult(electionID, cmd.UserID)
	if err != nil {
		switch {
		case errors.Is(err, election.ErrNotFound):
			middleware.CommandReply(w, false, fmt.Sprintf("No election %s.", electionID), nil)
		case errors.Is(err, election.ErrNotAuthorized):
			middleware.CommandReply(w, false,
				"Only the election creator may view the tally while voting is open.", nil)
		default:
			slog.Error("failed to check result", "election", electionID, "error", err)
			middleware.CommandReply(w, false, "Failed to check result.", nil)
		}
		return
	}

	middleware.CommandReply(w, false, blocks.LiveTally(result), nil)
}

func (h *CommandHandler) confirmVote(w http.ResponseWriter, cmd models.SlashCommand) {
	fields := strings.Fields(cmd.Text)
	if len(fields) != 2 {
		middleware.CommandReply(w, false, "Usage: /qb-confirm [election-id] [code]", nil)
		return
	}

	found, err := h.elections.ConfirmVote(fields[0], fields[1])
	if err != nil {
		if errors.Is(err, election.ErrNotFound) {
			middleware.CommandReply(w, false, fmt.Sprintf("No election %s.", fields[0]), nil)
			return
		}
		slog.Error("failed to confirm vote", "election", fields[0], "error", err)
		middleware.CommandReply(w, false, "Failed to confirm vote.", nil)
		return
	}

	if found {
		middleware.CommandReply(w, false, "Confirmed: that code matches exactly one recorded vote.", nil)
	} else {
		middleware.CommandReply(w, false, "No recorded vote matches that code.", nil)
	}
}
