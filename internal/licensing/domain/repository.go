package domain

import "context"

// Repository defines the interface for license storage.
type Repository interface {
	// LoadKey returns the stored license key, or "" when none is stored.
	LoadKey(ctx context.Context) (string, error)

	// LoadStatus returns the stored status.
	// Returns nil, nil if no status has been stored yet (first run).
	LoadStatus(ctx context.Context) (*LicenseStatus, error)

	// Save persists the license key and status together in one write.
	Save(ctx context.Context, status *LicenseStatus) error

	// Delete removes the stored key and status.
	Delete(ctx context.Context) error
}
