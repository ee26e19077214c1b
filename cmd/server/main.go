package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatql-server/internal/app"
	"github.com/vovakirdan/chatql-server/internal/auth"
	"github.com/vovakirdan/chatql-server/internal/config"
	chatlog "github.com/vovakirdan/chatql-server/internal/log"
)

type rootFlags struct {
	configPath string
	addr       string
	logLevel   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "chatql-server:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "chatql-server",
		Short:         "GraphQL chat API over HTTP and WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&flags.addr, "addr", "", "HTTP listen address")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newTokenCmd(flags))
	return cmd
}

func newTokenCmd(flags *rootFlags) *cobra.Command {
	var member string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an identity token for a member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}

			token, err := auth.GenerateToken(&auth.JWTConfig{
				Secret: []byte(cfg.Auth.JWTSecret),
				Issuer: cfg.Auth.JWTIssuer,
				TTL:    cfg.Auth.JWTTTL,
			}, member)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&member, "member", "", "member name the token identifies")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}

func loadConfig(flags *rootFlags) (*config.Config, *zerolog.Logger, error) {
	bootstrap := chatlog.New("info", "console")

	cfg, path, err := config.Load(bootstrap, flags.configPath)
	if err != nil {
		bootstrap.Error().Err(err).Msg("load config")
		return nil, nil, err
	}
	cfg.UpdateFrom(config.Config{Addr: flags.addr, LogLevel: flags.logLevel})
	if err := cfg.Validate(); err != nil {
		bootstrap.Error().Err(err).Msg("invalid config")
		return nil, nil, err
	}

	logger := chatlog.New(cfg.LogLevel, cfg.LogFormat)
	if path != "" {
		logger.Debug().Str("path", path).Msg("config loaded")
	}
	return &cfg, logger, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("init app")
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Str("path", cfg.GraphQLPath).Msg("starting chatql server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
