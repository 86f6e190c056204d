package domain

import "errors"

var (
	// ErrLicenseKeyRequired indicates an empty or whitespace-only license key.
	ErrLicenseKeyRequired = errors.New("license key is required")

	// ErrLicenseRejected indicates the licensing service explicitly refused the key.
	ErrLicenseRejected = errors.New("license rejected by licensing service")

	// ErrNetworkError indicates the licensing service could not be reached.
	ErrNetworkError = errors.New("network error during license validation")
)
