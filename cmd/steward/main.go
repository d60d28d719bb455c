package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stewardhq/steward/internal/agent"
	"github.com/stewardhq/steward/internal/approval"
	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/core"
	"github.com/stewardhq/steward/internal/gitrepo"
	"github.com/stewardhq/steward/internal/ratelimit"
	"github.com/stewardhq/steward/internal/server"
	"github.com/stewardhq/steward/internal/session"
	"github.com/stewardhq/steward/internal/store/postgres"
	redisstore "github.com/stewardhq/steward/internal/store/redis"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a signed API token for the given caller id and exit")
	flag.Parse()

	if err := run(*issueToken); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run(issueTokenCaller string) error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("STEWARD_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("STEWARD_LOG_FORMAT")
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

	// Token issuance is an operator action, not an HTTP surface.
	if issueTokenCaller != "" {
		token, issueErr := auth.IssueToken(cfg.JWT.Secret, issueTokenCaller, cfg.JWT.AccessTTL)
		if issueErr != nil {
			return issueErr
		}
		fmt.Println(token)
		return nil
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL for the approval audit trail.
	pgStore, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), cfg.History.RetainPerCaller) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer pgStore.Close()

	// Connect to Redis for sessions, pending changes, and event fan-out.
	store, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("redis close")
		}
	}()

	// Agent executor drives the external CLI agent.
	executor := agent.NewExecutor(
		agent.NewExecRunner(),
		cfg.Agent.Binary,
		cfg.Agent.MaxTurns,
		cfg.Agent.Timeout,
		cfg.Agent.CompactTimeout,
	)

	// Session tracker compacts long-running conversations via the executor.
	tracker := session.NewTracker(store.Sessions(), executor, cfg.Session.CompactThreshold)

	// Approval service gates the git working tree.
	git := gitrepo.New(cfg.Repo.Path)
	approvals := approval.NewService(store.Changes(), pgStore.History(), git)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Sliding-window rate limiter with background pruning.
	limiter := ratelimit.NewLimiter(cfg.RateLimit.Windows(), cfg.RateLimit.NoticeCooldown, nil)
	limiter.StartCleanup(ctx)

	pipeline := core.NewService(limiter, tracker, executor, approvals, pgStore.History(), store)

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, pipeline, store)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
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
