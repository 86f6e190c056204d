package domain

import "errors"

var (
	ErrPremiumRequired    = errors.New("premium license required")
	ErrLicenseKeyRequired = errors.New("license key is required for cloud sync")
	ErrIDGeneration       = errors.New("failed to generate history id")
	ErrCloudNotConfigured = errors.New("cloud sync is not configured")
)
