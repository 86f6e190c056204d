package cli

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/lingua/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and service health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return errAppNotInitialized
		}

		result := app.Health.Check(cmd.Context())
		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), result)
		}

		names := make([]string, 0, len(result.Checks))
		for name := range result.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.Status)
		for _, name := range names {
			check := result.Checks[name]
			line := fmt.Sprintf("  %-10s %s", name, check.Status)
			if check.Message != "" {
				line += " (" + check.Message + ")"
			}
			fmt.Fprintln(out, line)
		}

		if result.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
