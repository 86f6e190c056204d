package license

import (
	"context"
	"time"

	"github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/spf13/cobra"
)

// Service is the subset of the license manager used by the commands.
type Service interface {
	GetStatus(ctx context.Context) *domain.LicenseStatus
	Activate(ctx context.Context, licenseKey string) (*domain.LicenseStatus, domain.ValidationResult, error)
	Clear(ctx context.Context) error
	Now() time.Time
}

var licenseService Service

// SetLicenseService sets the license service for CLI commands.
func SetLicenseService(s Service) {
	licenseService = s
}

// Cmd is the parent command for license operations.
var Cmd = &cobra.Command{
	Use:   "license",
	Short: "Manage your Lingua license",
	Long: `Manage your Lingua Premium license.

Use these commands to activate, check status, or deactivate your license.
For upgrade options, run: lingua upgrade`,
}

func init() {
	Cmd.AddCommand(statusCmd)
}
