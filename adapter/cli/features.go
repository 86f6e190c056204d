package cli

import (
	"fmt"
	"io"

	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List providers and tones available to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		features := app.Translation.Features(cmd.Context())
		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), features)
		}

		out := cmd.OutOrStdout()
		if features.IsPremium {
			fmt.Fprintln(out, "Plan: Premium")
		} else {
			fmt.Fprintln(out, "Plan: Free")
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "Providers:")
		printAvailability(out, features.Providers)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Tones:")
		printAvailability(out, features.Tones)
		fmt.Fprintln(out)

		if features.HistoryLimit == featuresDomain.Unlimited {
			fmt.Fprintln(out, "History: unlimited, cloud sync enabled")
		} else {
			fmt.Fprintf(out, "History: last %d translations\n", features.HistoryLimit)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func printAvailability(out io.Writer, entries []featuresDomain.Availability) {
	for _, e := range entries {
		marker := "✓"
		suffix := ""
		if !e.Available {
			marker = "✗"
			suffix = " (premium)"
		}
		fmt.Fprintf(out, "  %s %-10s %s%s\n", marker, e.ID, e.Name, suffix)
	}
}
