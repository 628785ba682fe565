// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP handlers for the inbound Slack webhooks.

# Handler Types

Each handler is a struct carrying its manager and notifier dependencies:

  - CommandHandler: all /qb-* slash commands
  - InteractionHandler: vote button presses (block_actions)
  - EventHandler: the url_verification handshake and reaction events

Handlers are created via constructor functions:

	commandHandler := handlers.NewCommandHandler(cfg, elections, approvals, carts, notifier)

# Command Flow

Slash commands arrive form-encoded on POST /slack/commands and are answered
synchronously in the response body. Commands outside the configured channel
are refused. The full command set is in commandList; /qb-help renders it.

# Vote Flow

The election announcement carries Yes/No buttons whose action ids embed the
election id ("{id}_yes" / "{id}_no"). A press lands on POST
/slack/interactions, the vote is recorded, the voter gets an ephemeral
confirmation code, and the vote that finishes the election announces the
result exactly once.

# Approval Flow

/qb-buy announces the purchase request and opens an approval workflow keyed
by the cart name, remembering the announcement timestamp. Reaction events on
POST /slack/events are matched back to the workflow by that timestamp;
:white_check_mark: from a registered approver records an approval, removal
retracts it. When every registered approver has reacted the cart is cleared
and the approved purchase announced. /qb-abort abandons a pending workflow
without touching the cart.

# Delivery Semantics

Interaction and event endpoints always answer 200 once the payload parses:
the platform redelivers non-200 responses, and redelivered votes or
reactions would double-apply. Per-election and per-workflow outcomes are
communicated through messages instead.
*/
package handlers
