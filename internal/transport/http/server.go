package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatql-server/internal/auth"
	"github.com/vovakirdan/chatql-server/internal/config"
	chatlog "github.com/vovakirdan/chatql-server/internal/log"
)

// NewServer builds an HTTP server exposing the schema over plain HTTP and
// over WebSocket on the same path.
func NewServer(schema *graphql.Schema, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	jwtConfig := &auth.JWTConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.JWTTTL,
	}

	// Cancelled on Shutdown so hijacked WebSocket connections end too.
	shutdownCtx, shutdown := context.WithCancel(context.Background())

	ws := NewWSHandler(schema, jwtConfig, cfg.WS, shutdownCtx, logger)
	gql := NewGraphQLHandler(schema, ws, logger)

	router := gin.New()
	router.Use(gin.Recovery(), chatlog.GinMiddleware(logger))
	router.GET("/health", healthHandler)

	api := router.Group(cfg.GraphQLPath, IdentityMiddleware(jwtConfig, logger))
	api.POST("", gql.Post)
	api.GET("", gql.Get)

	server := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	server.RegisterOnShutdown(shutdown)
	return server
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
