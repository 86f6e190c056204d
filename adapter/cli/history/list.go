package history

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/lingua/adapter/cli"
	"github.com/spf13/cobra"
)

var limit int

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List recent translations",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		items, err := app.History.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), items)
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No translations yet.")
			return nil
		}

		for _, item := range items {
			synced := " "
			if item.Synced {
				synced = "☁"
			}
			fmt.Fprintf(out, "%s %s  %s→%s  [%s/%s]\n",
				synced,
				item.Timestamp.Local().Format("Jan 2 15:04"),
				item.SourceLang,
				item.TargetLang,
				item.Engine,
				item.Tone,
			)
			fmt.Fprintf(out, "    %s\n", oneLine(item.Original))
			fmt.Fprintf(out, "    %s\n", oneLine(item.Translation))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of items to show")
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	const maxWidth = 80
	if r := []rune(s); len(r) > maxWidth {
		return string(r[:maxWidth-1]) + "…"
	}
	return s
}
