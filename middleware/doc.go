// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package middleware provides HTTP handler wrappers and response helpers.
//
// WithLogging logs request start/completion with timing. WithSlackVerification
// gates webhook endpoints behind the signing-secret check, restoring the body
// for downstream parsing. CommandReply shapes the immediate slash-command
// response.
package middleware
