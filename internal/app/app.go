package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"

	"github.com/rs/zerolog"

	"github.com/GautamAgrawal1/lets-connect/internal/auth"
	"github.com/GautamAgrawal1/lets-connect/internal/config"
	"github.com/GautamAgrawal1/lets-connect/internal/core"
	"github.com/GautamAgrawal1/lets-connect/internal/history"
	"github.com/GautamAgrawal1/lets-connect/internal/metrics"
	"github.com/GautamAgrawal1/lets-connect/internal/store"
	"github.com/GautamAgrawal1/lets-connect/internal/store/sqlite"
	transporthttp "github.com/GautamAgrawal1/lets-connect/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server *stdhttp.Server
	cfg    *config.Config
	hub    *core.Hub
	store  store.Store
	log    *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})

	var relayMetrics *metrics.Relay
	var hubMetrics core.Metrics
	if cfg.MetricsEnabled {
		relayMetrics = metrics.New()
		hubMetrics = relayMetrics
	}

	hub := core.NewHub(core.Options{
		AnnounceSelf: cfg.AnnounceSelf,
		EchoChat:     cfg.EchoChat,
		ChatBacklog:  cfg.ChatBacklog,
		ClientBuffer: cfg.ClientBuffer,
	}, logger, hubMetrics)

	server := transporthttp.NewServer(transporthttp.Deps{
		Hub:     hub,
		Auth:    authService,
		History: history.NewService(authService, st),
		Metrics: relayMetrics,
		Config:  cfg,
		Logger:  logger,
	})

	return &App{
		server: server,
		cfg:    cfg,
		hub:    hub,
		store:  st,
		log:    logger,
	}, nil
}

// OpenStore opens the database and applies the schema.
func OpenStore(ctx context.Context, path string) (*sqlite.SQLiteStore, error) {
	st, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return st, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer func() {
		stopHub()
		<-a.hub.Done()
		a.cleanup()
	}()
	go a.hub.Run(hubCtx)

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.cfg.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		// Stopping the hub first closes every websocket, which Shutdown does
		// not wait for on hijacked connections.
		a.log.Info().Msg("shutting down relay")
		stopHub()
		<-a.hub.Done()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
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
