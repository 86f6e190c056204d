package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/lingua/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/lingua/internal/mcp"
	"github.com/felixgeelhaar/lingua/pkg/config"
	"github.com/felixgeelhaar/lingua/pkg/observability"
	"github.com/spf13/cobra"
)

var serveAddr string

// loadConfig is swapped in tests.
var loadConfig = config.Load

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		logger := observability.LoggerFromEnv("lingua-mcp")
		err = mcpinternal.Serve(cmd.Context(), cfg, app, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from MCP_ADDR)")
}
