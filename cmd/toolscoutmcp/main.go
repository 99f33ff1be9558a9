package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toolscout/internal/app"
	"toolscout/internal/infra/mcpserver"
)

type mcpOptions struct {
	configPath string
}

func main() {
	opts := mcpOptions{
		configPath: "toolscout.yaml",
	}
	logger := zap.NewNop()

	root := &cobra.Command{
		Use:   "toolscoutmcp",
		Short: "MCP stdio entrypoint for tool recommendations",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Logs go to stderr; stdout carries the MCP protocol.
			cfg := zap.NewProductionConfig()
			cfg.OutputPaths = []string{"stderr"}
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			engine, err := app.InitializeEngine(ctx, app.ServeConfig{
				ConfigPath: opts.configPath,
			}, logger)
			if err != nil {
				return err
			}

			server := mcpserver.New(engine, app.Version, logger)
			if err := server.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to config file")

	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
