package domain

import (
	"strings"
	"time"
)

// CacheDuration is how long a successful remote validation is trusted
// before the license must be re-validated.
const CacheDuration = 24 * time.Hour

// GracePeriodDuration is how long after the last successful validation a
// premium license survives network failures.
const GracePeriodDuration = 7 * 24 * time.Hour

// TrustState describes which trust level is currently in effect.
type TrustState string

const (
	// TrustStateFreemium means no premium features are available.
	TrustStateFreemium TrustState = "freemium"
	// TrustStatePremiumTrusted means the cached validation is still fresh.
	TrustStatePremiumTrusted TrustState = "premium_trusted"
	// TrustStatePremiumGrace means the cache expired, the licensing service
	// could not be reached, and the last validation is within the grace period.
	TrustStatePremiumGrace TrustState = "premium_grace"
)

// LicenseStatus is the persisted trust decision.
// A non-premium status never carries license key, email, or expiry data.
type LicenseStatus struct {
	IsPremium   bool       `json:"isPremium"`
	LicenseKey  string     `json:"licenseKey,omitempty"`
	Email       string     `json:"email,omitempty"`
	Plan        string     `json:"plan,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty"`
	CachedUntil *time.Time `json:"cachedUntil,omitempty"`
}

// FreemiumStatus returns the fully reset default status.
func FreemiumStatus() *LicenseStatus {
	return &LicenseStatus{}
}

// NewPremiumStatus builds a freshly validated premium status.
func NewPremiumStatus(licenseKey string, info *LicenseInfo, now time.Time) *LicenseStatus {
	validatedAt := now
	cachedUntil := now.Add(CacheDuration)

	status := &LicenseStatus{
		IsPremium:   true,
		LicenseKey:  strings.TrimSpace(licenseKey),
		ValidatedAt: &validatedAt,
		CachedUntil: &cachedUntil,
	}
	if info != nil {
		status.Email = info.Email
		status.Plan = info.Plan
		if info.ExpiresAt != nil {
			expiresAt := *info.ExpiresAt
			status.ExpiresAt = &expiresAt
		}
	}
	return status
}

// Normalize enforces the freemium reset invariant.
func (s *LicenseStatus) Normalize() *LicenseStatus {
	if s == nil || !s.IsPremium {
		return FreemiumStatus()
	}
	return s
}

// IsCacheValid reports whether the cached decision can be used without a
// remote call. The comparison is strict: cachedUntil must be after now.
func (s *LicenseStatus) IsCacheValid(now time.Time) bool {
	return s != nil && s.CachedUntil != nil && s.CachedUntil.After(now)
}

// WithinGracePeriod reports whether a premium status may be kept when the
// licensing service is unreachable.
func (s *LicenseStatus) WithinGracePeriod(now time.Time) bool {
	if s == nil || !s.IsPremium || s.ValidatedAt == nil {
		return false
	}
	return now.Sub(*s.ValidatedAt) < GracePeriodDuration
}

// TrustState derives the trust level this status represents at now.
func (s *LicenseStatus) TrustState(now time.Time) TrustState {
	switch {
	case s == nil || !s.IsPremium:
		return TrustStateFreemium
	case s.IsCacheValid(now):
		return TrustStatePremiumTrusted
	default:
		return TrustStatePremiumGrace
	}
}

// Clone returns a deep copy.
func (s *LicenseStatus) Clone() *LicenseStatus {
	if s == nil {
		return nil
	}
	out := *s
	out.ExpiresAt = cloneTime(s.ExpiresAt)
	out.ValidatedAt = cloneTime(s.ValidatedAt)
	out.CachedUntil = cloneTime(s.CachedUntil)
	return &out
}

// MaskedKey returns the license key with the middle masked for display.
// e.g., "ABCD********MNOP"
func (s *LicenseStatus) MaskedKey() string {
	if s == nil || s.LicenseKey == "" {
		return ""
	}
	key := s.LicenseKey
	if len(key) <= 4 {
		return key
	}
	if len(key) < 12 {
		return key[:4] + strings.Repeat("*", len(key)-4)
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
