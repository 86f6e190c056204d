package license

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/lingua/adapter/cli"
	"github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/spf13/cobra"
)

// statusCmd shows the current license status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current license status",
	Long: `Display the current license status including:
- License key (masked)
- Plan and email
- Expiration date
- Whether the license is verified or running on the offline grace period`,
	RunE: runStatus,
}

// Summary is the machine-readable license status.
type Summary struct {
	IsPremium   bool                     `json:"isPremium"`
	State       domain.TrustState        `json:"state"`
	MaskedKey   string                   `json:"maskedKey,omitempty"`
	Email       string                   `json:"email,omitempty"`
	Plan        string                   `json:"plan,omitempty"`
	ExpiresAt   *time.Time               `json:"expiresAt,omitempty"`
	ValidatedAt *time.Time               `json:"validatedAt,omitempty"`
	Warning     domain.ExpirationWarning `json:"warning"`
}

func summarize(status *domain.LicenseStatus, now time.Time) Summary {
	return Summary{
		IsPremium:   status.IsPremium,
		State:       status.TrustState(now),
		MaskedKey:   status.MaskedKey(),
		Email:       status.Email,
		Plan:        status.Plan,
		ExpiresAt:   status.ExpiresAt,
		ValidatedAt: status.ValidatedAt,
		Warning:     domain.CheckExpiration(status, now),
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	if licenseService == nil {
		return errServiceUnavailable
	}

	status := licenseService.GetStatus(cmd.Context())
	now := licenseService.Now()

	if cli.JSONOutput() {
		return cli.PrintJSON(cmd.OutOrStdout(), summarize(status, now))
	}

	switch status.TrustState(now) {
	case domain.TrustStatePremiumTrusted:
		return displayActiveStatus(cmd, status, now)
	case domain.TrustStatePremiumGrace:
		return displayGracePeriodStatus(cmd, status, now)
	default:
		return displayFreeStatus(cmd)
	}
}

func printDetails(cmd *cobra.Command, status *domain.LicenseStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "License: %s\n", status.MaskedKey())
	if status.Plan != "" {
		fmt.Fprintf(out, "Plan: %s\n", status.Plan)
	}
	if status.Email != "" {
		fmt.Fprintf(out, "Email: %s\n", status.Email)
	}
	if status.ExpiresAt != nil {
		fmt.Fprintf(out, "Expires: %s\n", status.ExpiresAt.Format("January 2, 2006"))
	}
}

func displayActiveStatus(cmd *cobra.Command, status *domain.LicenseStatus, now time.Time) error {
	out := cmd.OutOrStdout()
	printDetails(cmd, status)
	fmt.Fprintln(out, "Status: Active")

	if warning := domain.CheckExpiration(status, now); warning.ShouldShow {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Your license expires in %d day(s). Renew with: lingua upgrade\n", warning.DaysUntilExpiry)
	}

	if status.ValidatedAt != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Last validated: %s\n", status.ValidatedAt.Format("Jan 2, 2006 15:04 MST"))
	}
	return nil
}

func displayGracePeriodStatus(cmd *cobra.Command, status *domain.LicenseStatus, now time.Time) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "*** OFFLINE - GRACE PERIOD ***")
	fmt.Fprintln(out)
	printDetails(cmd, status)
	if status.ValidatedAt != nil {
		graceEnds := status.ValidatedAt.Add(domain.GracePeriodDuration)
		fmt.Fprintf(out, "Grace period ends in: %d day(s)\n", domain.DaysUntil(graceEnds, now))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "The licensing service could not be reached. Premium features stay")
	fmt.Fprintln(out, "enabled until the grace period ends.")
	return nil
}

func displayFreeStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "License Status: Free")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Upgrade to Premium for:")
	fmt.Fprintln(out, "  - Google Gemini, Anthropic Claude and Groq")
	fmt.Fprintln(out, "  - Casual, academic, business and creative tones")
	fmt.Fprintln(out, "  - Unlimited history with cloud sync")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To upgrade: lingua upgrade")
	return nil
}
