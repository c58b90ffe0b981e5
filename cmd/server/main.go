package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/geekfeed/internal/app"
	"github.com/samvad-hq/geekfeed/internal/config"
	"github.com/samvad-hq/geekfeed/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("server starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		return err
	}
	defer rt.Close()

	if err := rt.Serve(ctx); err != nil {
		return fmt.Errorf("server run: %w", err)
	}

	return nil
}
