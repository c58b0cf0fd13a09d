package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/olegsm/talkie-server/internal/auth"
	"github.com/olegsm/talkie-server/internal/config"
	"github.com/olegsm/talkie-server/internal/core"
	"github.com/olegsm/talkie-server/internal/mediaengine/cloudinary"
	"github.com/olegsm/talkie-server/internal/replyengine"
	"github.com/olegsm/talkie-server/internal/replyengine/openai"
	"github.com/olegsm/talkie-server/internal/store"
	"github.com/olegsm/talkie-server/internal/store/sqlite"
	transporthttp "github.com/olegsm/talkie-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWT.Secret),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	}
	authService := auth.NewService(st, jwtConfig)

	// Without an API key the busy-recipient path degrades to the fixed
	// fallback text after the timeout instead of a generated reply.
	var replies replyengine.Engine
	if cfg.Reply.APIKey != "" {
		replies = openai.New(cfg.Reply.BaseURL, cfg.Reply.APIKey, cfg.Reply.Model)
	} else {
		logger.Warn().Msg("no reply api key configured, generated replies disabled")
	}

	media := cloudinary.New(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.BaseURL)

	registry := core.NewRegistry()
	hub := core.NewHub(registry, st, replies, cfg.Reply.Timeout, logger)
	server := transporthttp.NewServer(hub, authService, st, media, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
