package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"prayer_bot/internal/config"
	"prayer_bot/internal/fetcher"
	"prayer_bot/internal/filter"
	"prayer_bot/internal/listener"
	"prayer_bot/internal/model"
	"prayer_bot/internal/sheets"
	"prayer_bot/internal/storage"
	"prayer_bot/internal/telegram"
	"prayer_bot/internal/telemetry"
	"prayer_bot/internal/youtube"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ts, err := youtube.TokenSource(ctx, cfg.YouTubeTokenFile, cfg.YouTubeClientSecret, log)
	if err != nil {
		log.Error("load youtube credentials", "path", cfg.YouTubeTokenFile, "error", err)
		os.Exit(1)
	}
	yt, err := youtube.New(ctx, option.WithTokenSource(ts))
	if err != nil {
		log.Error("create youtube client", "error", err)
		os.Exit(1)
	}

	var resolver listener.SessionResolver = yt
	if cfg.YouTubeChannelID != "" {
		resolver = youtube.NewFeedResolver(fetcher.New(http.DefaultClient), yt, cfg.YouTubeChannelID)
	}

	sink, closeSinks, err := newSink(ctx, cfg, log)
	if err != nil {
		log.Error("create log sink", "error", err)
		os.Exit(1)
	}
	defer closeSinks()

	l := listener.New(resolver, yt, sink, log)
	l.SetBudget(cfg.MaxRuntime)
	l.SetIdentities(filter.NewIdentitySet(cfg.BotAliases))
	l.SetPartitionNaming(cfg.PartitionNaming, cfg.PartitionName)

	if cfg.TelegramEnabled() {
		n, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Error("create telegram notifier", "error", err)
			os.Exit(1)
		}
		l.SetNotifier(n)
	}

	telemetry.Init()
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	log.Info("starting bot", "max_runtime", cfg.MaxRuntime, "sinks", strings.Join(cfg.Sinks, ","))

	err = l.Run(ctx)
	switch {
	case err == nil:
		log.Info("bot execution completed")
	case errors.Is(err, model.ErrNoActiveSession):
		log.Info("no active live broadcast found")
	case errors.Is(err, context.Canceled):
		log.Info("bot stopped")
	case errors.Is(err, model.ErrChatClosed):
		log.Info("live chat closed", "reason", err)
	default:
		log.Error("bot terminated", "error", err)
		closeSinks()
		os.Exit(1)
	}
}

// newSink builds the configured log sinks. The returned func closes them.
func newSink(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Sink, func(), error) {
	var (
		tee     storage.Tee
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
		closers = nil
	}

	if cfg.HasSink(config.SinkSheets) {
		auth, err := sheets.ServiceAccount(ctx, cfg.SheetsCredentialsFile)
		if err != nil {
			return nil, closeAll, err
		}
		s, err := sheets.New(ctx, cfg.SpreadsheetID, auth)
		if err != nil {
			return nil, closeAll, err
		}
		tee = append(tee, s)
	}

	if cfg.HasSink(config.SinkSQLite) {
		if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, closeAll, err
			}
		}
		s, err := storage.NewSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, s.Close)
		log.Debug("sqlite log opened", "path", cfg.DatabasePath)
		tee = append(tee, s)
	}

	if len(tee) == 1 {
		return tee[0], closeAll, nil
	}
	return tee, closeAll, nil
}

func serveMetrics(ctx context.Context, addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server", "addr", addr, "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
