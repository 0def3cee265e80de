// Package servecmder provides the serve command for running the lectern API server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lecternhq/lectern/api"
	"github.com/lecternhq/lectern/pkg/bedrock"
	"github.com/lecternhq/lectern/pkg/canvas"
	"github.com/lecternhq/lectern/pkg/config"
	"github.com/lecternhq/lectern/pkg/logger"
)

type ServeCommander struct {
	listen       string
	region       string
	model        string
	canvasDomain string
	debug        bool
	logger       *zap.Logger
}

const serveLongDesc string = `Run the lectern API server.

The server fronts AWS Bedrock for completions, chats, and streamed chats,
and proxies Canvas LMS lookups when Canvas credentials are configured.

Configuration resolves in order: flags, environment (LECTERN_* plus
CANVAS_API_KEY, CANVAS_DOMAIN, AWS_REGION), config.toml, built-in defaults.

Examples:
  lectern serve
  lectern serve --listen :9000 --region us-west-2
  lectern serve --model us.amazon.nova-lite-v1:0`

const serveShortDesc string = "Run the lectern API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagListen,
				config.FlagRegion,
				config.FlagModel,
				config.FlagCanvasDomain,
			})

			return cmder.run(config.FromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagRegion, &cmder.region)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagCanvasDomain, &cmder.canvasDomain)

	return cmd
}

func (c *ServeCommander) run(cfg *config.Config) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	ctx := context.Background()

	model, err := bedrock.New(ctx, bedrock.Config{
		Region:      cfg.Bedrock.Region,
		ModelID:     cfg.Bedrock.ModelID,
		Temperature: cfg.Bedrock.Temperature,
		MaxTokens:   int(cfg.Bedrock.MaxTokens),
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating bedrock client: %w", err)
	}

	// A nil interface keeps the Canvas routes registered but answering 503.
	var canvasClient api.CanvasClient
	cc, err := canvas.New(canvas.Config{
		APIKey: cfg.Canvas.APIKey,
		Domain: cfg.Canvas.Domain,
	}, c.logger)
	switch {
	case errors.Is(err, canvas.ErrNotConfigured):
		c.logger.Warn("canvas credentials not configured, canvas routes disabled")
	case err != nil:
		return fmt.Errorf("creating canvas client: %w", err)
	default:
		canvasClient = cc
	}

	server, err := api.NewServer(api.Config{
		ListenAddr:     cfg.Server.Listen,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}, model, canvasClient, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
