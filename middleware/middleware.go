// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quorum-bot/auth"
	"github.com/danielhkuo/quorum-bot/models"
)

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Log request
		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		// Call the next handler
		next(w, r)

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// WithSlackVerification rejects requests whose signature does not match the
// signing secret. The body is read for verification and restored so the next
// handler can parse it.
func WithSlackVerification(signingSecret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			ErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		timestamp := r.Header.Get("X-Slack-Request-Timestamp")
		signature := r.Header.Get("X-Slack-Signature")
		if err := auth.VerifySignature(signingSecret, timestamp, signature, body); err != nil {
			slog.Warn("rejected unverified request",
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"reason", err,
			)
			if errors.Is(err, auth.ErrStaleTimestamp) {
				ErrorResponse(w, http.StatusBadRequest, "Request timestamp out of range")
				return
			}
			ErrorResponse(w, http.StatusUnauthorized, "Invalid request signature")
			return
		}

		next(w, r)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// CommandReply answers a slash command in the response body. Ephemeral
// replies are visible only to the invoker; in-channel replies are public.
func CommandReply(w http.ResponseWriter, inChannel bool, text string, blocks []any) {
	reply := models.CommandReply{Text: text, Blocks: blocks}
	if inChannel {
		reply.ResponseType = "in_channel"
	} else {
		reply.ResponseType = "ephemeral"
	}
	JSONResponse(w, http.StatusOK, reply)
}
