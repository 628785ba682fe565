// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier generation and webhook authentication.

# ID Generation

Random hex IDs for decisions and cart items:

	id, err := auth.GenerateID(8)  // 16 hex characters, 64 bits

Hex IDs are alphanumeric, so they embed safely in compound action ids
without creating suffix ambiguity.

# Confirmation Tokens

Each accepted vote gets an opaque UUID confirmation token:

	confirmation := auth.NewConfirmation()

Voters can later re-enter the token to verify their vote was recorded.

# Action IDs

Yes/no buttons carry a compound action id that routes a click back to the
election without any per-decision callback registration:

	auth.ButtonActionID("a1b2", true)       // "a1b2_yes"
	auth.ParseActionID("a1b2_yes")          // "a1b2", true, nil

# Request Signatures

Inbound webhooks are authenticated with the platform's "v0=" HMAC-SHA256
scheme over "v0:{timestamp}:{body}":

	err := auth.VerifySignature(secret, tsHeader, sigHeader, body)

Timestamps older than five minutes are rejected to limit replay.
*/
package auth
