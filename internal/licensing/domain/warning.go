package domain

import (
	"math"
	"time"
)

// ExpirationWarningDays is the window in which renewal warnings are shown.
const ExpirationWarningDays = 7

// ExpirationWarning tells the UI whether to show a renewal reminder.
type ExpirationWarning struct {
	ShouldShow      bool `json:"shouldShow"`
	DaysUntilExpiry int  `json:"daysUntilExpiry"`
}

// DaysUntil returns ceil((expiresAt - now) / 24h).
func DaysUntil(expiresAt, now time.Time) int {
	return int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
}

// CheckExpiration decides whether a renewal warning applies.
// Warnings are prospective only: zero or negative days never warn.
func CheckExpiration(status *LicenseStatus, now time.Time) ExpirationWarning {
	if status == nil || !status.IsPremium || status.ExpiresAt == nil {
		return ExpirationWarning{}
	}

	days := DaysUntil(*status.ExpiresAt, now)
	return ExpirationWarning{
		ShouldShow:      days >= 1 && days <= ExpirationWarningDays,
		DaysUntilExpiry: days,
	}
}
