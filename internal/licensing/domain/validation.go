package domain

import (
	"context"
	"fmt"
	"time"
)

// MsgLicenseKeyRequired is returned for empty or whitespace-only keys.
const MsgLicenseKeyRequired = "License key is required"

// FailureKind classifies why a validation did not succeed.
// Only transport failures are eligible for the offline grace period.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureInput     FailureKind = "input"
	FailureRejected  FailureKind = "rejected"
	FailureTransport FailureKind = "transport"
)

// LicenseInfo is the license metadata returned by the licensing service.
type LicenseInfo struct {
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Plan      string     `json:"plan,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// ValidationResult is the outcome of a remote license check.
type ValidationResult struct {
	Valid   bool         `json:"valid"`
	License *LicenseInfo `json:"license,omitempty"`
	Error   string       `json:"error,omitempty"`
	Failure FailureKind  `json:"-"`
}

// IsTransportFailure reports whether the licensing service could not be reached.
func (r ValidationResult) IsTransportFailure() bool {
	return !r.Valid && r.Failure == FailureTransport
}

// Err maps an unsuccessful result onto the package's sentinel errors.
// It returns nil for a valid result.
func (r ValidationResult) Err() error {
	switch {
	case r.Valid:
		return nil
	case r.Failure == FailureInput:
		return ErrLicenseKeyRequired
	case r.Failure == FailureTransport:
		return fmt.Errorf("%w: %s", ErrNetworkError, r.Error)
	default:
		return fmt.Errorf("%w: %s", ErrLicenseRejected, r.Error)
	}
}

// InputFailure builds the result for a key that fails local checks.
func InputFailure(msg string) ValidationResult {
	return ValidationResult{Valid: false, Error: msg, Failure: FailureInput}
}

// Validator checks a license key against the licensing service.
// Implementations hold no local state and do not retry.
type Validator interface {
	Validate(ctx context.Context, licenseKey string) ValidationResult
}
