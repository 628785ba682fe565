// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quorum-bot/auth"
	"github.com/danielhkuo/quorum-bot/models"
)

func TestWithLogging(t *testing.T) {
	// Create a simple handler that returns OK
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	// Wrap with logging middleware
	wrappedHandler := WithLogging(testHandler)

	// Create test request and recorder
	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	// Execute
	wrappedHandler(w, req)

	// Verify handler was called
	if !handlerCalled {
		t.Error("Expected handler to be called")
	}

	// Verify response was written correctly
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
}

func TestWithSlackVerification(t *testing.T) {
	const secret = "test-signing-secret"
	body := "command=%2Fqb-help&user_id=U1"

	signedRequest := func(sign bool) *http.Request {
		req := httptest.NewRequest("POST", "/slack/commands", strings.NewReader(body))
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		if sign {
			req.Header.Set("X-Slack-Signature", auth.SignRequest(secret, timestamp, []byte(body)))
		} else {
			req.Header.Set("X-Slack-Signature", "v0=deadbeef")
		}
		return req
	}

	t.Run("valid signature passes body through", func(t *testing.T) {
		var seenBody string
		handler := WithSlackVerification(secret, func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			seenBody = string(raw)
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		handler(w, signedRequest(true))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if seenBody != body {
			t.Errorf("Expected body restored for handler, got '%s'", seenBody)
		}
	})

	t.Run("invalid signature rejected", func(t *testing.T) {
		handlerCalled := false
		handler := WithSlackVerification(secret, func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		w := httptest.NewRecorder()
		handler(w, signedRequest(false))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
		if handlerCalled {
			t.Error("Expected handler not to be called")
		}
	})

	t.Run("stale timestamp rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/slack/commands", strings.NewReader(body))
		timestamp := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", auth.SignRequest(secret, timestamp, []byte(body)))

		handler := WithSlackVerification(secret, func(w http.ResponseWriter, r *http.Request) {
			t.Error("Expected handler not to be called")
		})

		w := httptest.NewRecorder()
		handler(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "simple struct",
			statusCode: http.StatusOK,
			data:       map[string]string{"message": "hello"},
			expected:   `{"message":"hello"}`,
		},
		{
			name:       "error response",
			statusCode: http.StatusBadRequest,
			data:       models.ErrorResponse{Error: "Bad Request", Message: "missing field"},
			expected:   `{"error":"Bad Request","message":"missing field"}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			// Check status code
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			// Check Content-Type header
			contentType := w.Header().Get("Content-Type")
			if contentType != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
			}

			// Check body (trim newline added by Encode)
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		name          string
		statusCode    int
		message       string
		expectedError string
	}{
		{
			name:          "bad request",
			statusCode:    http.StatusBadRequest,
			message:       "threshold is required",
			expectedError: "Bad Request",
		},
		{
			name:          "unauthorized",
			statusCode:    http.StatusUnauthorized,
			message:       "invalid request signature",
			expectedError: "Unauthorized",
		},
		{
			name:          "not found",
			statusCode:    http.StatusNotFound,
			message:       "election not found",
			expectedError: "Not Found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			// Check status code
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			// Decode and verify error response
			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}

			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		body := `{"type":"url_verification","challenge":"abc123"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.EventCallback
		err := ParseJSONBody(req, &parsed)

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Type != "url_verification" {
			t.Errorf("Expected type 'url_verification', got '%s'", parsed.Type)
		}
		if parsed.Challenge != "abc123" {
			t.Errorf("Expected challenge 'abc123', got '%s'", parsed.Challenge)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		body := `{invalid json}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.EventCallback
		err := ParseJSONBody(req, &parsed)

		if err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var parsed models.EventCallback
		err := ParseJSONBody(req, &parsed)

		if err == nil {
			t.Error("Expected error for empty body")
		}
	})
}

func TestCommandReply(t *testing.T) {
	t.Run("ephemeral", func(t *testing.T) {
		w := httptest.NewRecorder()
		CommandReply(w, false, "only you can see this", nil)

		var reply models.CommandReply
		if err := json.NewDecoder(w.Body).Decode(&reply); err != nil {
			t.Fatalf("Failed to decode reply: %v", err)
		}
		if reply.ResponseType != "ephemeral" {
			t.Errorf("Expected response_type 'ephemeral', got '%s'", reply.ResponseType)
		}
		if reply.Text != "only you can see this" {
			t.Errorf("Unexpected text: %s", reply.Text)
		}
	})

	t.Run("in channel with blocks", func(t *testing.T) {
		w := httptest.NewRecorder()
		CommandReply(w, true, "public", []any{map[string]any{"type": "divider"}})

		var reply models.CommandReply
		if err := json.NewDecoder(w.Body).Decode(&reply); err != nil {
			t.Fatalf("Failed to decode reply: %v", err)
		}
		if reply.ResponseType != "in_channel" {
			t.Errorf("Expected response_type 'in_channel', got '%s'", reply.ResponseType)
		}
		if len(reply.Blocks) != 1 {
			t.Errorf("Expected 1 block, got %d", len(reply.Blocks))
		}
	})

	t.Run("omits blocks when nil", func(t *testing.T) {
		w := httptest.NewRecorder()
		CommandReply(w, false, "plain", nil)

		if strings.Contains(w.Body.String(), "blocks") {
			t.Error("Expected no blocks key in reply")
		}
	})
}

func ExampleCommandReply() {
	w := httptest.NewRecorder()
	CommandReply(w, false, "hello", nil)
	fmt.Println(strings.TrimSpace(w.Body.String()))
	// Output: {"response_type":"ephemeral","text":"hello"}
}
