package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatql-server/internal/config"
	"github.com/vovakirdan/chatql-server/internal/core"
	"github.com/vovakirdan/chatql-server/internal/graph"
	"github.com/vovakirdan/chatql-server/internal/store/memory"
	transporthttp "github.com/vovakirdan/chatql-server/internal/transport/http"
)

// App wires together store, hub, schema and transport.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	st := memory.NewSeeded()
	if _, err := st.GetMemberByName(context.Background(), cfg.DefaultAuthor); err != nil {
		return nil, fmt.Errorf("default author %q: %w", cfg.DefaultAuthor, err)
	}

	hub := core.NewHub(logger)
	resolver := graph.NewResolver(st, hub, cfg.DefaultAuthor, logger)
	schema, err := graph.NewSchema(resolver, graph.Options{MaxDepth: cfg.GraphQL.MaxDepth}, logger)
	if err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	server := transporthttp.NewServer(schema, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the hub and the HTTP server and blocks until context
// cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		return <-serverErr
	}
}
