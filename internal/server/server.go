package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/stewardhq/steward/internal/api/ws"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/core"
	"github.com/stewardhq/steward/internal/messenger"
	stewardslack "github.com/stewardhq/steward/internal/messenger/slack"
	"github.com/stewardhq/steward/internal/server/middleware"
	redisstore "github.com/stewardhq/steward/internal/store/redis"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	pipeline   *core.Service
	wsHub      *ws.Hub
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx bounds the lifetime of
// background route helpers such as the per-IP limiter cleanup.
func New(ctx context.Context, cfg *config.Config, pipeline *core.Service, store *redisstore.Store) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	hub := ws.NewHub(store)

	s := &Server{
		router:   router,
		pipeline: pipeline,
		wsHub:    hub,
		cfg:      cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// API routes: JWT-authenticated, with a transport-level per-IP limiter in
	// front of the pipeline's own sliding-window limiter.
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RateLimitByIP(ctx, 10, 20))

		apiConfig := huma.DefaultConfig("Steward API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, pipeline)
	})

	// WebSocket routes.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		registerWSRoutes(r, hub)
	})

	// Slack webhook routes: real handler if configured, 501 placeholder otherwise.
	router.Route("/slack", func(r chi.Router) {
		slackHandler := s.buildSlackHandler(cfg, pipeline)
		if slackHandler != nil {
			registerSlackRoutes(r, slackHandler)
		} else {
			r.Post("/events", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotImplemented)
			})
			r.Post("/interactions", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotImplemented)
			})
		}
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// buildSlackHandler creates the Slack handler stack when Slack is configured.
// Returns nil if the Slack signing secret is not set.
func (s *Server) buildSlackHandler(cfg *config.Config, pipeline *core.Service) *stewardslack.Handler {
	if cfg.Slack.SigningSecret == "" {
		return nil
	}

	slackClient := slacklib.New(cfg.Slack.BotToken)
	slackMessenger := stewardslack.NewSlackMessenger(slackClient)

	msgRouter := messenger.NewRouter(pipeline, slackMessenger)
	handler := stewardslack.NewHandler(cfg.Slack.SigningSecret, msgRouter)

	log.Info().Msg("Slack integration enabled")

	return handler
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
