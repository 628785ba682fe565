// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil provides shared test helpers.
//
// SetupTestStore opens an in-memory document store. RecordingNotifier stands
// in for the Slack client and records every delivery. The Make*Request
// helpers build webhook requests signed with TestSigningSecret, so handler
// tests exercise the same verification path as production traffic.
package testutil
