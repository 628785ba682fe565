// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quorum-bot/approval"
	"github.com/danielhkuo/quorum-bot/cart"
	"github.com/danielhkuo/quorum-bot/cliparse"
	"github.com/danielhkuo/quorum-bot/election"
	"github.com/danielhkuo/quorum-bot/handlers"
	"github.com/danielhkuo/quorum-bot/middleware"
	"github.com/danielhkuo/quorum-bot/notify"
	"github.com/danielhkuo/quorum-bot/store"
)

func NewRouter(st store.Store, notifier notify.Notifier, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize managers and handlers
	elections := election.NewManager(st)
	approvals := approval.NewManager(st)
	carts := cart.NewManager(st)

	commandHandler := handlers.NewCommandHandler(cfg, elections, approvals, carts, notifier)
	interactionHandler := handlers.NewInteractionHandler(elections, notifier)
	eventHandler := handlers.NewEventHandler(cfg, approvals, carts, notifier)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Inbound webhooks (all signature-verified)
	mux.HandleFunc("POST /slack/commands",
		middleware.WithLogging(middleware.WithSlackVerification(cfg.SigningSecret, commandHandler.Handle)))
	mux.HandleFunc("POST /slack/interactions",
		middleware.WithLogging(middleware.WithSlackVerification(cfg.SigningSecret, interactionHandler.Handle)))
	mux.HandleFunc("POST /slack/events",
		middleware.WithLogging(middleware.WithSlackVerification(cfg.SigningSecret, eventHandler.Handle)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quorum-bot v1"))
	})

	return mux
}
