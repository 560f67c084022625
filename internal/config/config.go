// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"prayer_bot/internal/partition"
)

// Log sink kinds.
const (
	SinkSheets = "sheets"
	SinkSQLite = "sqlite"
)

// DefaultBotAliases are the bot's own display names.
var DefaultBotAliases = []string{"evangelistrambabu", "evangelistrambaburambo"}

// Config holds the application configuration.
type Config struct {
	MaxRuntime      time.Duration
	PartitionNaming partition.Naming
	PartitionName   string
	BotAliases      []string
	Sinks           []string

	SpreadsheetID         string
	SheetsCredentialsFile string
	YouTubeTokenFile      string
	YouTubeClientSecret   string
	YouTubeChannelID      string
	DatabasePath          string
	TelegramBotToken      string
	TelegramChatID        int64
	MetricsAddr           string
	LogLevel              string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		PartitionName:         envOrDefault("LOG_PARTITION_NAME", "Prayer Requests"),
		SpreadsheetID:         os.Getenv("SPREADSHEET_ID"),
		SheetsCredentialsFile: envOrDefault("SHEETS_CREDENTIALS_FILE", "./credentials.json"),
		YouTubeTokenFile:      envOrDefault("YOUTUBE_TOKEN_FILE", "./youtube_token.json"),
		YouTubeClientSecret:   envOrDefault("YOUTUBE_CLIENT_SECRET_FILE", "./client_secret.json"),
		YouTubeChannelID:      os.Getenv("YOUTUBE_CHANNEL_ID"),
		DatabasePath:          envOrDefault("DATABASE_PATH", "./data/prayers.db"),
		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		MetricsAddr:           os.Getenv("METRICS_ADDR"),
		LogLevel:              envOrDefault("LOG_LEVEL", "info"),
	}

	secs := 14400
	if raw := os.Getenv("MAX_RUNTIME_SECONDS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_RUNTIME_SECONDS %q: must be a positive integer", raw)
		}
		secs = n
	}
	cfg.MaxRuntime = time.Duration(secs) * time.Second

	naming, err := partition.ParseNaming(envOrDefault("LOG_PARTITION_NAMING", string(partition.Monthly)))
	if err != nil {
		return nil, fmt.Errorf("LOG_PARTITION_NAMING: %w", err)
	}
	cfg.PartitionNaming = naming
	if naming == partition.Static && strings.TrimSpace(cfg.PartitionName) == "" {
		return nil, fmt.Errorf("LOG_PARTITION_NAME is required with static-name partitions")
	}

	cfg.BotAliases = DefaultBotAliases
	if raw := os.Getenv("BOT_IDENTITY_ALIASES"); raw != "" {
		cfg.BotAliases = splitList(raw)
	}

	cfg.Sinks = splitList(envOrDefault("LOG_SINKS", SinkSheets))
	if len(cfg.Sinks) == 0 {
		return nil, fmt.Errorf("LOG_SINKS must name at least one sink")
	}
	for _, s := range cfg.Sinks {
		switch s {
		case SinkSheets:
			if cfg.SpreadsheetID == "" {
				return nil, fmt.Errorf("SPREADSHEET_ID is required for the sheets sink")
			}
		case SinkSQLite:
		default:
			return nil, fmt.Errorf("unknown log sink %q in LOG_SINKS, use: %s, %s", s, SinkSheets, SinkSQLite)
		}
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = id
	}
	if (cfg.TelegramBotToken == "") != (cfg.TelegramChatID == 0) {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	return cfg, nil
}

// HasSink reports whether the named sink is enabled.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// TelegramEnabled reports whether prayer requests are forwarded to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
