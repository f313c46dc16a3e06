package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"GreetingServer/internal/config"
	"GreetingServer/internal/server"
)

/*

STARTUP ORDER:

1. Environment         :   any malformed value is fatal
2. Route table         :   built-in, or ROUTES_FILE validated up front
3. Listeners           :   public port, then admin port if enabled
4. Serve               :   until SIGINT/SIGTERM, then drain

A port that cannot be bound exits non-zero.
*/

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "greeting-server",
		Output: os.Stderr,
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		stop()
		os.Exit(1)
	}

	logger.Info("server stopped")
}
