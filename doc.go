// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the quorum bot server.

The quorum bot runs two group decision processes out of one Slack channel:
unanimous purchase approvals over shared shopping carts, and
percentage-threshold elections with yes/no button voting.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	SLACK_SIGNING_SECRET=... SLACK_BOT_TOKEN=xoxb-... CHANNEL_NAME=purchasing CHANNEL_ID=C... go run main.go

Or with flags for the non-secret parts:

	go run main.go -p 3319 -t sqlite -d quorum-bot.db -channel purchasing -channel-id C...

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - SLACK_SIGNING_SECRET: Webhook signature verification
  - SLACK_BOT_TOKEN: Web API authentication
  - CHANNEL_NAME (-channel): Channel the bot accepts commands from
  - CHANNEL_ID (-channel-id): Channel the bot announces into

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Database file or connection string

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: Webhook handlers (commands, interactions, events)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Signature verification, logging, JSON helpers
  - election, approval, cart: Decision and resource managers
  - quorum: Pure threshold evaluation
  - store: Document store over sqlite/postgres
  - notify: Outbound Slack messaging
  - blocks: Message rendering
  - auth: Tokens, action ids, request signatures
  - keymutex: Per-key critical sections
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
