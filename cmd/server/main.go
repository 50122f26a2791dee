package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"epic-coverage/internal/common/config"
	"epic-coverage/internal/common/logger"
	"epic-coverage/internal/common/observability"
	"epic-coverage/internal/llm"
	"epic-coverage/internal/server"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "epic-coverage",
		Short: "Scores how well an epic's stories cover support ticket intents",
	}

	root.AddCommand(serveCommand(), versionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLogger.Sync() }()
	log := logger.NewZapAdapter(zapLogger)

	log.Info("starting", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"model":       cfg.OpenAI.Model,
	})
	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; scoring requests will fail until it is provided", nil)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	var tracing *observability.Tracing
	if cfg.Tracing.Enabled {
		tracing, err = observability.NewTracing(cfg.App.Name, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer tracing.Shutdown()
	}

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Policy: llm.RetryPolicy{
			MaxAttempts: cfg.OpenAI.MaxAttempts,
			Backoff:     cfg.OpenAI.Backoff(),
		},
	}, log, tracing)

	router := server.NewRouter(cfg, client, log, obs)
	srv := server.New(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("signal received", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
