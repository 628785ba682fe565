// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package blocks

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quorum-bot/auth"
	"github.com/danielhkuo/quorum-bot/models"
	"github.com/danielhkuo/quorum-bot/quorum"
)

// Election renders the announcement of a new election:
//
//	ELECTION
//	Do you confirm [ELECTEE] for the position of [POSITION]?
//	Allowed voters: [VOTERS...]
//	Election ID: [ID]
//	[Yes] [No]
func Election(e models.Election) []any {
	elements := []RichTextElement{
		bold("ELECTION\n"),
		text("Do you confirm "),
		user(e.ElecteeID),
		text(fmt.Sprintf(" for the position of %s?\nAllowed voters: ", e.Position)),
	}
	for _, uid := range e.AllowedVoterIDs {
		elements = append(elements, user(uid), text(" "))
	}
	elements = append(elements, italic(fmt.Sprintf("\nElection ID: %s", e.ID)))

	actions := Actions{
		Type: "actions",
		Elements: []Button{
			button("Yes", auth.ButtonActionID(e.ID, true), false),
			button("No", auth.ButtonActionID(e.ID, false), true),
		},
	}
	return []any{richText(elements), actions}
}

// ElectionResult renders the one-time concluded announcement.
func ElectionResult(r quorum.Result) []any {
	verdict := "FAILED"
	if r.IsPassed {
		verdict = "PASSED"
	}
	yesToPass, _ := quorum.ThresholdSplit(r.Election.ThresholdPct, r.NumVoters)

	elements := []RichTextElement{
		bold("ELECTION RESULT\n"),
		text("The election of "),
		user(r.Election.ElecteeID),
		text(fmt.Sprintf(" for %s has concluded!\nThe final vote ", r.Election.Position)),
		bold(verdict),
		text(fmt.Sprintf(" with a vote of %d yes to %d no (%d%%).\n"+
			"The threshold for this election was %d%% of %d allowed voters (%d).\n"+
			"Reporting percentage was %d%% (%d/%d).\n",
			r.NumYes, r.NumNo, r.VotePct,
			r.Election.ThresholdPct, r.NumVoters, yesToPass,
			r.ReportingPct, r.ReportingVoters, r.NumVoters)),
		italic(fmt.Sprintf("Election ID: %s", r.Election.ID)),
	}
	return []any{richText(elements)}
}

// VoteConfirmation renders the ephemeral thank-you carrying the voter's
// confirmation code.
func VoteConfirmation(e models.Election, choice, confirmation string) []any {
	elements := []RichTextElement{
		text("Thank you for voting in the election of "),
		user(e.ElecteeID),
		text(fmt.Sprintf(" for %s.\nYour vote: ", e.Position)),
		bold(choice),
		text(fmt.Sprintf("\nYour confirmation code: %s\n", confirmation)),
		italic(fmt.Sprintf("Election ID: %s", e.ID)),
	}
	return []any{richText(elements)}
}

// LiveTally renders the creator's in-progress (or public finished) tally
// as plain text.
func LiveTally(r quorum.Result) string {
	state := "in progress"
	if r.IsFinished {
		if r.IsPassed {
			state = "finished: PASSED"
		} else {
			state = "finished: FAILED"
		}
	}
	return fmt.Sprintf("Election %s (%s): %d yes, %d no (%d%% yes). Reporting: %d/%d voters (%d%%).",
		r.Election.ID, state, r.NumYes, r.NumNo, r.VotePct,
		r.ReportingVoters, r.NumVoters, r.ReportingPct)
}

// CartContents renders a cart listing in the form the purchase request
// embeds.
func CartContents(cartName string, requester models.User, items []models.CartItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s requested cart %s:\n", requester.Mention(), cartName)
	for _, item := range items {
		fmt.Fprintf(&b, "- %d x %s (%s)\n", item.Qty, item.Part, item.AddedBy.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PurchaseRequest renders the approval-workflow announcement approvers
// react to.
func PurchaseRequest(cartContents string, approvers []models.User) string {
	mentions := make([]string, len(approvers))
	for i, a := range approvers {
		mentions[i] = a.Mention()
	}
	return "*BEGIN PURCHASE REQUEST*\n\n" +
		cartContents + "\n\n" +
		"Approvers (required): " + strings.Join(mentions, " ") + "\n" +
		"Please react :white_check_mark: to approve this purchase request"
}

// PurchaseApproved renders the unanimity announcement before the cart is
// cleared.
func PurchaseApproved(cartName, cartContents string, s models.ApprovalSubject) string {
	mentions := make([]string, len(s.Approvals))
	for i, a := range s.Approvals {
		mentions[i] = a.Approver.Mention()
	}
	return "*PURCHASE REQUEST APPROVED*\n\n" +
		cartContents + "\n\n" +
		"Approved by: " + strings.Join(mentions, " ") + "\n" +
		fmt.Sprintf("Cart %s will be cleared.", cartName)
}

// PendingWorkflow explains a duplicate /qb-buy, dating the workflow that is
// already running.
func PendingWorkflow(s models.ApprovalSubject) string {
	return fmt.Sprintf("Approval workflow already exists for cart %s (begun %s, %d approval(s) so far).",
		s.CartName, humanize.Time(s.BegunAt), len(s.Approvals))
}

// CartList renders the /qb-list-carts output with relative ages.
func CartList(requester models.User, carts []models.Cart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s requested a list of all carts:\n", requester.Mention())
	if len(carts) == 0 {
		b.WriteString("(no carts)")
		return b.String()
	}
	for _, c := range carts {
		fmt.Fprintf(&b, "- %s (created %s by %s)\n", c.Name, humanize.Time(c.CreatedAt), c.CreatedBy.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Help renders the /qb-help text.
func Help(commands [][2]string) string {
	var b strings.Builder
	b.WriteString("*quorum bot*\n\nManages purchase approvals and threshold elections.\n\n*All commands:*\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "%s: %s\n", c[0], c[1])
	}
	b.WriteString("\n*Quickstart:*\n" +
		"1. Create a cart and add items to it.\n" +
		"2. Buy the cart. Approvers react to the message to approve the purchase.\n" +
		"3. Once every approver has reacted, the cart is cleared. Repeat for another round.\n" +
		"(note: approvers must be added before they can approve any purchases)")
	return b.String()
}
