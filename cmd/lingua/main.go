package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/lingua/adapter/cli"
	"github.com/felixgeelhaar/lingua/adapter/cli/history"
	"github.com/felixgeelhaar/lingua/adapter/cli/license"
	"github.com/felixgeelhaar/lingua/adapter/cli/mcp"
	"github.com/felixgeelhaar/lingua/internal/app"
	mcpinternal "github.com/felixgeelhaar/lingua/internal/mcp"
	"github.com/felixgeelhaar/lingua/pkg/config"
	"github.com/felixgeelhaar/lingua/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv("lingua")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cli.SetLogger(logger)

	// The CLI still starts without storage so that version and upgrade work.
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		cli.SetApp(mcpinternal.NewCLIApp(container))
		license.SetLicenseService(container.LicenseManager)
	}

	cli.AddCommand(license.Cmd)
	cli.AddCommand(license.UpgradeCmd)
	cli.AddCommand(history.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
