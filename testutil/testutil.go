// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/quorum-bot/auth"
	"github.com/danielhkuo/quorum-bot/cliparse"
	"github.com/danielhkuo/quorum-bot/store"
	_ "modernc.org/sqlite"
)

// TestSigningSecret signs all requests built by this package.
const TestSigningSecret = "test-signing-secret"

// TestChannelName and TestChannelID are the channel the test config binds
// the bot to.
const (
	TestChannelName = "purchasing"
	TestChannelID   = "C0TEST"
)

// SetupTestStore opens a fresh in-memory document store with the schema
// applied. The store is private to the test and vanishes when it ends.
func SetupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// An in-memory sqlite database is per-connection; a second pooled
	// connection would see an empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := store.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return store.NewSQLStore(db)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3319,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		SigningSecret: TestSigningSecret,
		BotToken:      "xoxb-test",
		ChannelName:   TestChannelName,
		ChannelID:     TestChannelID,
	}
}

// RecordingNotifier is an in-memory notify.Notifier. It records every
// delivery and issues sequential fake message timestamps.
type RecordingNotifier struct {
	mu sync.Mutex

	Announcements []RecordedMessage
	Ephemerals    []RecordedMessage
	Deleted       []string

	// FailAnnounce makes the next Announce calls fail when non-nil.
	FailAnnounce error

	nextTS int
}

// RecordedMessage is one delivered message.
type RecordedMessage struct {
	UserID string // ephemeral recipient, empty for announcements
	Text   string
	Blocks []any
	TS     string
}

func (n *RecordingNotifier) Announce(text string, blocks []any) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailAnnounce != nil {
		return "", n.FailAnnounce
	}
	n.nextTS++
	ts := fmt.Sprintf("1700000000.%06d", n.nextTS)
	n.Announcements = append(n.Announcements, RecordedMessage{Text: text, Blocks: blocks, TS: ts})
	return ts, nil
}

func (n *RecordingNotifier) NotifyParticipant(userID, text string, blocks []any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Ephemerals = append(n.Ephemerals, RecordedMessage{UserID: userID, Text: text, Blocks: blocks})
	return nil
}

func (n *RecordingNotifier) Delete(token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Deleted = append(n.Deleted, token)
	return nil
}

// LastAnnouncement returns the most recent announcement, failing the test
// if none was made.
func (n *RecordingNotifier) LastAnnouncement(t *testing.T) RecordedMessage {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Announcements) == 0 {
		t.Fatal("Expected an announcement, got none")
	}
	return n.Announcements[len(n.Announcements)-1]
}

// signRequest attaches a valid signature for TestSigningSecret.
func signRequest(req *http.Request, body []byte) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", auth.SignRequest(TestSigningSecret, timestamp, body))
}

// MakeCommandRequest builds a signed slash-command request as the platform
// sends it (form-encoded).
func MakeCommandRequest(command, text, userID, userName string) *http.Request {
	form := url.Values{}
	form.Set("command", command)
	form.Set("text", text)
	form.Set("user_id", userID)
	form.Set("user_name", userName)
	form.Set("channel_id", TestChannelID)
	form.Set("channel_name", TestChannelName)
	body := form.Encode()

	req := httptest.NewRequest("POST", "/slack/commands", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	signRequest(req, []byte(body))
	return req
}

// MakeInteractionRequest builds a signed block-actions request carrying one
// button press.
func MakeInteractionRequest(t *testing.T, actionID, userID, userName string) *http.Request {
	t.Helper()

	payload := map[string]any{
		"type": "block_actions",
		"user": map[string]any{"id": userID, "username": userName},
		"actions": []map[string]any{
			{"action_id": actionID},
		},
		"channel": map[string]any{"id": TestChannelID},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal interaction payload: %v", err)
	}

	form := url.Values{}
	form.Set("payload", string(raw))
	body := form.Encode()

	req := httptest.NewRequest("POST", "/slack/interactions", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	signRequest(req, []byte(body))
	return req
}

// MakeReactionRequest builds a signed reaction_added / reaction_removed
// event delivery for a message in the test channel.
func MakeReactionRequest(t *testing.T, eventType, reaction, userID, messageTS string) *http.Request {
	t.Helper()

	payload := map[string]any{
		"type": "event_callback",
		"event": map[string]any{
			"type":     eventType,
			"user":     userID,
			"reaction": reaction,
			"item": map[string]any{
				"type":    "message",
				"channel": TestChannelID,
				"ts":      messageTS,
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal event payload: %v", err)
	}

	req := httptest.NewRequest("POST", "/slack/events", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	signRequest(req, raw)
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
