package history

import (
	"github.com/spf13/cobra"
)

// Cmd is the history command group
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Manage translation history",
	Long: `List and clear your translation history.

Free plans keep the latest 5 translations on this machine.
Premium plans keep everything and sync it to the cloud.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(clearCmd)
	Cmd.AddCommand(syncCmd)
	Cmd.AddCommand(fetchCmd)
}
