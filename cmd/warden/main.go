package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/warden/internal/auth"
	"github.com/gosuda/warden/internal/config"
	"github.com/gosuda/warden/internal/moderation"
	"github.com/gosuda/warden/internal/notify"
	"github.com/gosuda/warden/internal/server"
	"github.com/gosuda/warden/internal/store/postgres"
	redisstore "github.com/gosuda/warden/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("WARDEN_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("WARDEN_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis for the moderation event stream.
	events, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := events.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("redis close")
		}
	}()

	// Assemble the notification dispatcher from the configured senders.
	var senders []notify.Sender
	if cfg.SMTP.Host != "" {
		mailer := notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		senders = append(senders, notify.NewEmailSender(mailer))
	} else {
		log.Warn().Msg("WARDEN_SMTP_HOST not set, email notifications disabled")
	}
	if cfg.Slack.BotToken != "" {
		senders = append(senders, notify.NewSlackFeed(slacklib.New(cfg.Slack.BotToken), cfg.Slack.Channel))
	}

	dispatcher := notify.NewDispatcher(cfg.Moderation.NotifyBuffer, senders...)
	defer dispatcher.Close()

	// Create the moderation service.
	engine := moderation.NewEngine(cfg.Moderation.PurgeGrace)
	svc := moderation.NewService(engine, store.Accounts(),
		moderation.WithNotifier(dispatcher),
		moderation.WithPublisher(events),
		moderation.WithPasswordHasher(auth.NewHasher()),
	)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Optional background sweep keeps list views fresh between reads; the
	// just-in-time reconciliation on every read path is the correctness
	// guarantee.
	if cfg.Moderation.SweepInterval > 0 {
		go runSweep(ctx, svc, cfg.Moderation.SweepInterval)
	}

	// Create HTTP server with all routes wired.
	srv := server.New(cfg, store, svc, events)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func runSweep(ctx context.Context, svc *moderation.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.SweepExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int("unsuspended", n).Msg("expiry sweep")
			}
		}
	}
}
