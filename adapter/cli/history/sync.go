package history

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/lingua/adapter/cli"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload pending translations to the cloud (Premium)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result := app.History.SyncToCloud(ctx, app.Translation.Session(ctx))
		if cli.JSONOutput() {
			if err := cli.PrintJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
		}
		if !result.Success {
			return errors.New(result.Error)
		}

		if !cli.JSONOutput() {
			if result.SyncedCount == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to sync.")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d translation(s).\n", result.SyncedCount)
			}
		}
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Merge cloud history into the local history (Premium)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result := app.History.FetchFromCloud(ctx, app.Translation.Session(ctx))
		if !result.Success {
			return errors.New(result.Error)
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d new translation(s); %d in history.\n", result.Added, len(result.Items))
		return nil
	},
}
