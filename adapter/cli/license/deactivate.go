package license

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deactivateForce bool

// deactivateCmd removes the current license.
var deactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Deactivate your license",
	Long: `Deactivate your current license and revert to the free plan.

This removes your license key from this machine. Local history is kept,
but only the latest 5 translations are retained from now on.
You can re-activate the same license key later.`,
	RunE: runDeactivate,
}

func init() {
	deactivateCmd.Flags().BoolVarP(&deactivateForce, "force", "f", false, "Skip confirmation prompt")
	Cmd.AddCommand(deactivateCmd)
}

func runDeactivate(cmd *cobra.Command, args []string) error {
	if licenseService == nil {
		return errServiceUnavailable
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	status := licenseService.GetStatus(ctx)
	if !status.IsPremium {
		fmt.Fprintln(out, "No license is currently activated.")
		return nil
	}

	if !deactivateForce {
		fmt.Fprintf(out, "This will deactivate license: %s\n", status.MaskedKey())
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Premium features will be disabled. Your history will be preserved.")
		fmt.Fprintln(out)
		fmt.Fprint(out, "Continue? [y/N]: ")

		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := licenseService.Clear(ctx); err != nil {
		return fmt.Errorf("failed to deactivate license: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "License deactivated.")
	fmt.Fprintln(out, "Premium features are now disabled.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To reactivate: lingua license activate <your-license-key>")
	return nil
}
