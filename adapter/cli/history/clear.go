package history

import (
	"fmt"

	"github.com/felixgeelhaar/lingua/adapter/cli"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the local history",
	Long: `Delete the local history and the queue of translations waiting to be synced.
History already synced to the cloud is not affected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		if err := app.History.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}
