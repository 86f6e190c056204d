package domain

import (
	"context"
	"errors"
)

// FailureKind classifies why a cloud operation did not succeed.
type FailureKind string

const (
	// FailureAccess means the session may not use cloud history.
	FailureAccess FailureKind = "access"
	// FailureNotConfigured means no remote history API is configured.
	FailureNotConfigured FailureKind = "not_configured"
	// FailureRemote means the remote API failed or could not be reached.
	FailureRemote FailureKind = "remote"
	// FailureStorage means reading or writing local history failed.
	FailureStorage FailureKind = "storage"
)

// KindOf maps a cloud precondition error onto its failure kind.
func KindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrPremiumRequired), errors.Is(err, ErrLicenseKeyRequired):
		return FailureAccess
	case errors.Is(err, ErrCloudNotConfigured):
		return FailureNotConfigured
	default:
		return FailureRemote
	}
}

// SyncResult reports the outcome of pushing the pending queue.
type SyncResult struct {
	Success     bool        `json:"success"`
	SyncedCount int         `json:"syncedCount"`
	Error       string      `json:"error,omitempty"`
	Kind        FailureKind `json:"kind,omitempty"`
}

// SyncFailure builds a failed SyncResult.
func SyncFailure(kind FailureKind, err error) SyncResult {
	return SyncResult{Error: err.Error(), Kind: kind}
}

// FetchResult reports the outcome of pulling remote history.
type FetchResult struct {
	Success bool        `json:"success"`
	Added   int         `json:"added"`
	Items   []Item      `json:"items,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    FailureKind `json:"kind,omitempty"`
}

// FetchFailure builds a failed FetchResult.
func FetchFailure(kind FailureKind, err error) FetchResult {
	return FetchResult{Error: err.Error(), Kind: kind}
}

// CloudClient talks to the remote history API.
type CloudClient interface {
	// Sync uploads items and returns the count the server acknowledged.
	Sync(ctx context.Context, licenseKey string, items []Item) (int, error)

	// Fetch downloads the remote history for the license.
	Fetch(ctx context.Context, licenseKey string) ([]Item, error)
}

// Repository persists the history collection and the pending-sync queue.
type Repository interface {
	// Load returns the history (newest first) and the pending queue.
	Load(ctx context.Context) (history []Item, pending []Item, err error)

	// Save writes both collections in one atomic operation.
	Save(ctx context.Context, history []Item, pending []Item) error

	// Clear removes both collections.
	Clear(ctx context.Context) error
}
