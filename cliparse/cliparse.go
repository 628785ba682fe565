package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	SigningSecret string
	BotToken      string
	ChannelName   string
	ChannelID     string
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quorum-bot", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Workspace config (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.ChannelName, "channel", "", "Channel name the bot listens in")
	fs.StringVar(&cfg.ChannelID, "channel-id", "", "Channel ID the bot announces into")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3319 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "quorum-bot.db" // default sqlite file
	}

	// Secrets - MUST be provided
	cfg.SigningSecret = os.Getenv("SLACK_SIGNING_SECRET")
	if cfg.SigningSecret == "" {
		return Config{}, errors.New("SLACK_SIGNING_SECRET required")
	}

	cfg.BotToken = os.Getenv("SLACK_BOT_TOKEN")
	if cfg.BotToken == "" {
		return Config{}, errors.New("SLACK_BOT_TOKEN required")
	}

	if cfg.ChannelName == "" {
		cfg.ChannelName = os.Getenv("CHANNEL_NAME")
	}
	if cfg.ChannelName == "" {
		return Config{}, errors.New("CHANNEL_NAME required")
	}

	if cfg.ChannelID == "" {
		cfg.ChannelID = os.Getenv("CHANNEL_ID")
	}
	if cfg.ChannelID == "" {
		return Config{}, errors.New("CHANNEL_ID required")
	}

	return cfg, nil
}
