// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the quorum bot server.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, notifier, cfg)

# Endpoints

Health:

	GET /health

Inbound webhooks (signature-verified):

	POST /slack/commands     - Slash commands (/qb-*)
	POST /slack/interactions - Vote button presses
	POST /slack/events       - url_verification handshake, reaction events

# Handler Initialization

The router builds the managers and injects them into the handlers:

	elections := election.NewManager(st)
	approvals := approval.NewManager(st)
	carts := cart.NewManager(st)

All three webhook routes are wrapped in request logging and signing-secret
verification.
*/
package router
