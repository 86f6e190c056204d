package mcp

import (
	"github.com/felixgeelhaar/lingua/adapter/cli"
	"github.com/felixgeelhaar/lingua/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.Translation,
		container.LicenseManager,
		container.History,
	)

	cliApp.SetWaitForSync(container.WaitForBackgroundSync)
	if container.Health != nil {
		cliApp.Health = container.Health
	}
	if container.Config != nil && container.Config.APIAddr != "" {
		cliApp.APIAddr = container.Config.APIAddr
	}

	return cliApp
}
