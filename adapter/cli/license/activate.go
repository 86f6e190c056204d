package license

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/lingua/adapter/cli"
	"github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/spf13/cobra"
)

var errServiceUnavailable = errors.New("license service not available")

// activateCmd activates a license key.
var activateCmd = &cobra.Command{
	Use:   "activate <license-key>",
	Short: "Activate a license key to enable Premium features",
	Long: `Activate a license key to enable Lingua Premium features.

The key is validated with the licensing service. A failed activation
leaves your current license untouched.

You can obtain a license key by purchasing Lingua Premium: lingua upgrade

Example:
  lingua license activate LINGUA-XXXX-XXXX-XXXX`,
	Args: cobra.ExactArgs(1),
	RunE: runActivate,
}

func init() {
	Cmd.AddCommand(activateCmd)
}

func runActivate(cmd *cobra.Command, args []string) error {
	if licenseService == nil {
		return errServiceUnavailable
	}

	status, result, err := licenseService.Activate(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to save license: %w", err)
	}
	if err := result.Err(); err != nil {
		if errors.Is(err, domain.ErrNetworkError) {
			return fmt.Errorf("%w\nCheck your connection and try again", err)
		}
		return err
	}

	if cli.JSONOutput() {
		return cli.PrintJSON(cmd.OutOrStdout(), summarize(status, licenseService.Now()))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "License activated successfully!")
	fmt.Fprintln(out)
	printDetails(cmd, status)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "All providers and tones are now enabled.")
	return nil
}
