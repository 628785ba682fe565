// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3319)
  - DatabaseURL: Database file or connection string (default: quorum-bot.db for sqlite)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - SigningSecret: Slack signing secret for webhook verification (required)
  - BotToken: Slack bot token for Web API calls (required)
  - ChannelName: Channel name the bot accepts commands from (required)
  - ChannelID: Channel ID the bot announces into (required)

# CLI Flags

	-p           Server port
	-d           Database URL
	-t           Database type
	-channel     Channel name
	-channel-id  Channel ID

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	CHANNEL_NAME  → -channel
	CHANNEL_ID    → -channel-id

Secrets come from the environment only:

	SLACK_SIGNING_SECRET
	SLACK_BOT_TOKEN

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - SLACK_SIGNING_SECRET must be provided
  - SLACK_BOT_TOKEN must be provided
  - CHANNEL_NAME and CHANNEL_ID must be provided
  - DATABASE_URL must be provided when DatabaseType is postgres
*/
package cliparse
