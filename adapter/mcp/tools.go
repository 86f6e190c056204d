package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/felixgeelhaar/lingua/adapter/cli"
	"github.com/felixgeelhaar/lingua/pkg/observability"
	"github.com/felixgeelhaar/mcp-go"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

var errAppNotInitialized = errors.New("app not initialized")

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	t := &tools{app: deps.App}

	registerCoreTools(srv, t)
	registerLicenseTools(srv, t)
	registerTranslationTools(srv, t)
	registerHistoryTools(srv, t)

	return nil
}

// tools holds the handlers behind every registered tool.
type tools struct {
	app *cli.App
}

func registerCoreTools(srv *mcp.Server, t *tools) {
	srv.Tool("cli.health").
		Description("Check storage and wiring health").
		Handler(t.health)

	srv.Tool("cli.version").
		Description("Get CLI version information").
		Handler(func(ctx context.Context, input struct{}) (cli.VersionInfo, error) {
			return cli.VersionInfo{
				Version:   cli.Version,
				Commit:    cli.Commit,
				BuildDate: cli.BuildDate,
			}, nil
		})
}

func (t *tools) health(ctx context.Context, _ struct{}) (observability.OverallHealth, error) {
	if t.app == nil || t.app.Health == nil {
		return observability.OverallHealth{}, errAppNotInitialized
	}
	return t.app.Health.Check(ctx), nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " is required")
	}
	return nil
}
