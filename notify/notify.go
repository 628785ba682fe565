// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrAPIFailure indicates the chat platform accepted the HTTP request but
// rejected the call (ok=false in the response body).
var ErrAPIFailure = errors.New("chat api call failed")

// Notifier delivers decision announcements and per-participant messages.
// Announce returns an opaque message token (the platform timestamp) that
// later identifies the announcement, e.g. for reaction matching or rollback.
type Notifier interface {
	Announce(text string, blocks []any) (string, error)
	NotifyParticipant(userID, text string, blocks []any) error
	Delete(token string) error
}

const defaultBaseURL = "https://slack.com/api"

// SlackClient is the production Notifier. It posts to the Slack Web API
// with a bot token and announces into one configured channel.
type SlackClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	channelID  string
}

// NewSlackClient returns a client announcing into channelID using token.
func NewSlackClient(token, channelID string) *SlackClient {
	return &SlackClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		channelID:  channelID,
	}
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	TS    string `json:"ts"`
}

func (c *SlackClient) call(method string, payload map[string]any) (apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return apiResponse{}, fmt.Errorf("encoding %s payload: %w", method, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return apiResponse{}, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, fmt.Errorf("reading %s response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return apiResponse{}, fmt.Errorf("decoding %s response: %w", method, err)
	}
	if !parsed.OK {
		return parsed, fmt.Errorf("%w: %s: %s", ErrAPIFailure, method, parsed.Error)
	}
	return parsed, nil
}

// Announce posts a public message to the configured channel and returns its
// timestamp token.
func (c *SlackClient) Announce(text string, blocks []any) (string, error) {
	payload := map[string]any{
		"channel": c.channelID,
		"text":    text,
	}
	if blocks != nil {
		payload["blocks"] = blocks
	}
	resp, err := c.call("chat.postMessage", payload)
	if err != nil {
		return "", err
	}
	return resp.TS, nil
}

// NotifyParticipant posts an ephemeral message visible only to userID.
func (c *SlackClient) NotifyParticipant(userID, text string, blocks []any) error {
	payload := map[string]any{
		"channel": c.channelID,
		"user":    userID,
		"text":    text,
	}
	if blocks != nil {
		payload["blocks"] = blocks
	}
	_, err := c.call("chat.postEphemeral", payload)
	return err
}

// Delete removes a previously announced message. Used to roll back an
// announcement whose follow-up work failed.
func (c *SlackClient) Delete(token string) error {
	_, err := c.call("chat.delete", map[string]any{
		"channel": c.channelID,
		"ts":      token,
	})
	return err
}
