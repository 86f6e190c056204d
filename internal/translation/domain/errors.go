package domain

import "errors"

var (
	ErrUnknownProvider       = errors.New("unknown translation provider")
	ErrProviderNotConfigured = errors.New("translation provider is not configured")
	ErrAccessDenied          = errors.New("translation option requires premium")
	ErrEmptyTranslation      = errors.New("provider returned an empty translation")
	ErrInvalidRequest        = errors.New("invalid translation request")
)
