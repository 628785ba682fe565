// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSignature = errors.New("invalid request signature")
	ErrStaleTimestamp   = errors.New("request timestamp too old")
	ErrBadActionID      = errors.New("invalid action id format")
)

// Action id suffixes routing a button click back to (electionID, choice).
const (
	suffixYes = "_yes"
	suffixNo  = "_no"
)

// Signed requests older than this are rejected to limit replay.
const maxTimestampAge = 5 * time.Minute

// GenerateID creates a random hex ID of the specified byte length.
// Hex keeps IDs alphanumeric, so they embed safely in compound action ids.
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewConfirmation creates the opaque confirmation token returned to a voter
// as proof of submission.
func NewConfirmation() string {
	return uuid.NewString()
}

// ButtonActionID builds the compound action id for an election's yes/no
// button: "{electionID}_yes" or "{electionID}_no".
func ButtonActionID(electionID string, yes bool) string {
	if yes {
		return electionID + suffixYes
	}
	return electionID + suffixNo
}

// ParseActionID extracts (electionID, choice) from a compound action id.
// The inverse of ButtonActionID; unrecognized suffixes return ErrBadActionID.
func ParseActionID(actionID string) (electionID string, yes bool, err error) {
	if id, ok := strings.CutSuffix(actionID, suffixYes); ok && id != "" {
		return id, true, nil
	}
	if id, ok := strings.CutSuffix(actionID, suffixNo); ok && id != "" {
		return id, false, nil
	}
	return "", false, ErrBadActionID
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// CleanAlphanumeric strips every non-alphanumeric character.
func CleanAlphanumeric(text string) string {
	return nonAlphanumeric.ReplaceAllString(text, "")
}

// SignRequest computes the "v0=" HMAC-SHA256 signature over a request body,
// as the platform does: HMAC(secret, "v0:{timestamp}:{body}").
func SignRequest(secret, timestamp string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte("v0:" + timestamp + ":"))
	h.Write(body)
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks an inbound webhook signature and rejects stale
// timestamps. timestamp is the unix-seconds header value.
func VerifySignature(secret, timestamp, signature string, body []byte) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := time.Since(time.Unix(ts, 0))
	if age > maxTimestampAge || age < -maxTimestampAge {
		return ErrStaleTimestamp
	}
	expected := SignRequest(secret, timestamp, body)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}
