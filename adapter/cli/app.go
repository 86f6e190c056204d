package cli

import (
	"errors"

	historyApp "github.com/felixgeelhaar/lingua/internal/history/application"
	licensingApp "github.com/felixgeelhaar/lingua/internal/licensing/application"
	translationApp "github.com/felixgeelhaar/lingua/internal/translation/application"
	"github.com/felixgeelhaar/lingua/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	Translation *translationApp.Service
	License     *licensingApp.Manager
	History     *historyApp.Store
	Health      *observability.HealthRegistry

	// APIAddr is the default listen address for `lingua serve`.
	APIAddr string

	waitForSync func()
}

// NewApp creates a new CLI application with the provided services.
func NewApp(
	translation *translationApp.Service,
	license *licensingApp.Manager,
	history *historyApp.Store,
) *App {
	return &App{
		Translation: translation,
		License:     license,
		History:     history,
		Health:      observability.NewHealthRegistry(),
		APIAddr:     "127.0.0.1:7878",
	}
}

// SetWaitForSync sets the function that blocks until background syncs finish.
func (a *App) SetWaitForSync(wait func()) {
	a.waitForSync = wait
}

// WaitForSync blocks until background history syncs have finished.
func (a *App) WaitForSync() {
	if a.waitForSync != nil {
		a.waitForSync()
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

var errAppNotInitialized = errors.New("application not initialized - storage unavailable")

// RequireApp returns the global application or an error when it was never set.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, errAppNotInitialized
	}
	return app, nil
}
