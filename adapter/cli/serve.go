package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/lingua/adapter/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP bridge for the browser extension",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		cfg := api.DefaultServerConfig()
		cfg.Addr = app.APIAddr
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		handler := api.NewHandler(api.HandlerConfig{
			Translation: app.Translation,
			License:     app.License,
			History:     app.History,
			Logger:      logger,
		})
		server := api.NewServer(cfg, handler, app.Health, logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from LINGUA_API_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
