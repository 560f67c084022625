package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"prayer_bot/internal/partition"
)

var envKeys = []string{
	"MAX_RUNTIME_SECONDS", "LOG_PARTITION_NAMING", "LOG_PARTITION_NAME", "BOT_IDENTITY_ALIASES",
	"LOG_SINKS", "SPREADSHEET_ID", "SHEETS_CREDENTIALS_FILE", "YOUTUBE_TOKEN_FILE",
	"YOUTUBE_CLIENT_SECRET_FILE", "YOUTUBE_CHANNEL_ID", "DATABASE_PATH", "TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID", "METRICS_ADDR", "LOG_LEVEL",
}

func defaults() *Config {
	return &Config{
		MaxRuntime:            4 * time.Hour,
		PartitionNaming:       partition.Monthly,
		PartitionName:         "Prayer Requests",
		BotAliases:            DefaultBotAliases,
		Sinks:                 []string{SinkSheets},
		SpreadsheetID:         "sheet-1",
		SheetsCredentialsFile: "./credentials.json",
		YouTubeTokenFile:      "./youtube_token.json",
		YouTubeClientSecret:   "./client_secret.json",
		DatabasePath:          "./data/prayers.db",
		LogLevel:              "info",
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    func() *Config
		wantErr bool
	}{
		{
			name:    "sheets sink without spreadsheet id",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "spreadsheet only, defaults applied",
			env:  map[string]string{"SPREADSHEET_ID": "sheet-1"},
			want: defaults,
		},
		{
			name: "all values set",
			env: map[string]string{
				"SPREADSHEET_ID":             "sheet-1",
				"MAX_RUNTIME_SECONDS":        "600",
				"LOG_PARTITION_NAMING":       "static-name",
				"LOG_PARTITION_NAME":         "Sunday Service",
				"BOT_IDENTITY_ALIASES":       " MyBot , Other Bot ,",
				"LOG_SINKS":                  "sheets, SQLite",
				"SHEETS_CREDENTIALS_FILE":    "/etc/bot/sa.json",
				"YOUTUBE_TOKEN_FILE":         "/etc/bot/token.json",
				"YOUTUBE_CLIENT_SECRET_FILE": "/etc/bot/secret.json",
				"YOUTUBE_CHANNEL_ID":         "UC123",
				"DATABASE_PATH":              "/tmp/prayers.db",
				"TELEGRAM_BOT_TOKEN":         "tok",
				"TELEGRAM_CHAT_ID":           "-100123",
				"METRICS_ADDR":               ":9090",
				"LOG_LEVEL":                  "debug",
			},
			want: func() *Config {
				return &Config{
					MaxRuntime:            10 * time.Minute,
					PartitionNaming:       partition.Static,
					PartitionName:         "Sunday Service",
					BotAliases:            []string{"mybot", "other bot"},
					Sinks:                 []string{SinkSheets, SinkSQLite},
					SpreadsheetID:         "sheet-1",
					SheetsCredentialsFile: "/etc/bot/sa.json",
					YouTubeTokenFile:      "/etc/bot/token.json",
					YouTubeClientSecret:   "/etc/bot/secret.json",
					YouTubeChannelID:      "UC123",
					DatabasePath:          "/tmp/prayers.db",
					TelegramBotToken:      "tok",
					TelegramChatID:        -100123,
					MetricsAddr:           ":9090",
					LogLevel:              "debug",
				}
			},
		},
		{
			name: "sqlite only needs no spreadsheet",
			env:  map[string]string{"LOG_SINKS": "sqlite"},
			want: func() *Config {
				c := defaults()
				c.Sinks = []string{SinkSQLite}
				c.SpreadsheetID = ""
				return c
			},
		},
		{
			name:    "invalid runtime",
			env:     map[string]string{"SPREADSHEET_ID": "s", "MAX_RUNTIME_SECONDS": "soon"},
			wantErr: true,
		},
		{
			name:    "non-positive runtime",
			env:     map[string]string{"SPREADSHEET_ID": "s", "MAX_RUNTIME_SECONDS": "0"},
			wantErr: true,
		},
		{
			name:    "invalid naming",
			env:     map[string]string{"SPREADSHEET_ID": "s", "LOG_PARTITION_NAMING": "weekly"},
			wantErr: true,
		},
		{
			name:    "unknown sink",
			env:     map[string]string{"LOG_SINKS": "postgres"},
			wantErr: true,
		},
		{
			name:    "telegram token without chat",
			env:     map[string]string{"SPREADSHEET_ID": "s", "TELEGRAM_BOT_TOKEN": "tok"},
			wantErr: true,
		},
		{
			name:    "invalid telegram chat",
			env:     map[string]string{"SPREADSHEET_ID": "s", "TELEGRAM_BOT_TOKEN": "tok", "TELEGRAM_CHAT_ID": "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want(), got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHasSinkAndTelegram(t *testing.T) {
	c := &Config{Sinks: []string{SinkSQLite}}
	if c.HasSink(SinkSheets) || !c.HasSink(SinkSQLite) {
		t.Errorf("HasSink wrong for %v", c.Sinks)
	}
	if c.TelegramEnabled() {
		t.Error("telegram should be disabled without credentials")
	}
	c.TelegramBotToken, c.TelegramChatID = "tok", 42
	if !c.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
}
