// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify delivers messages to the chat workspace.
//
// The Notifier interface is the only surface the rest of the server sees:
// Announce posts publicly to the configured channel and hands back an opaque
// token, NotifyParticipant posts ephemerally to a single user, Delete rolls
// an announcement back. SlackClient is the production implementation over
// the Slack Web API; tests substitute an in-memory recording notifier.
package notify
