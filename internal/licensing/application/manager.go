package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/felixgeelhaar/lingua/pkg/observability"
	"golang.org/x/sync/singleflight"
)

// Metric names recorded by the manager.
const (
	MetricCacheHit   = "license.cache_hit"
	MetricValidation = "license.validation"
	MetricGrace      = "license.grace"
)

// Manager answers which trust level applies right now. It serves cached
// decisions for CacheDuration and keeps premium alive through network
// failures for GracePeriodDuration after the last successful validation.
type Manager struct {
	repo      domain.Repository
	validator domain.Validator
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time
	group     singleflight.Group

	mu    sync.Mutex
	cache *domain.LicenseStatus // in-memory copy of the stored status
}

// NewManager creates a new license manager.
func NewManager(repo domain.Repository, validator domain.Validator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		repo:      repo,
		validator: validator,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		now:       time.Now,
	}
}

// WithClock overrides the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// WithMetrics sets the metrics sink.
func (m *Manager) WithMetrics(metrics observability.Metrics) *Manager {
	if metrics != nil {
		m.metrics = metrics
	}
	return m
}

// GetStatus returns the license status in effect now. It never fails:
// storage and network problems degrade to freemium or to the grace period.
func (m *Manager) GetStatus(ctx context.Context) *domain.LicenseStatus {
	key, err := m.repo.LoadKey(ctx)
	if err != nil {
		m.logger.Warn("failed to load license key", "error", err)
		return domain.FreemiumStatus()
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.FreemiumStatus()
	}

	now := m.now()
	stored := m.loadStatus(ctx, key)
	if stored.IsCacheValid(now) {
		m.metrics.Counter(MetricCacheHit, 1)
		return stored.Clone()
	}

	// The validation is shared by every waiting caller, so it must outlive the
	// caller that started it. The HTTP client timeout still bounds it.
	v, _, _ := m.group.Do(key, func() (any, error) {
		return m.revalidate(context.WithoutCancel(ctx), key, stored), nil
	})
	return v.(*domain.LicenseStatus).Clone()
}

// revalidate calls the validator and applies the cache, rejection, and grace rules.
func (m *Manager) revalidate(ctx context.Context, key string, previous *domain.LicenseStatus) *domain.LicenseStatus {
	result := m.validator.Validate(ctx, key)
	now := m.now()

	switch {
	case result.Valid:
		m.metrics.Counter(MetricValidation, 1, observability.T("outcome", "valid"))
		status := domain.NewPremiumStatus(key, result.License, now)
		if err := m.StoreStatus(ctx, status); err != nil {
			m.logger.Warn("failed to persist license status", "error", err)
		}
		return status

	case result.IsTransportFailure():
		m.metrics.Counter(MetricValidation, 1, observability.T("outcome", "transport"))
		if previous.WithinGracePeriod(now) {
			m.metrics.Counter(MetricGrace, 1)
			m.logger.Info("licensing service unreachable, using grace period",
				"validated_at", previous.ValidatedAt,
				"error", result.Error,
			)
			return previous
		}
		m.logger.Warn("licensing service unreachable, falling back to freemium", "error", result.Error)
		return domain.FreemiumStatus()

	default:
		m.metrics.Counter(MetricValidation, 1, observability.T("outcome", "rejected"))
		m.logger.Info("license rejected", "error", result.Error)
		status := domain.FreemiumStatus()
		if err := m.StoreStatus(ctx, status); err != nil {
			m.logger.Warn("failed to persist license status", "error", err)
		}
		return status
	}
}

// loadStatus returns the cached status when it belongs to key, otherwise it
// reads the store. A missing or unreadable status is treated as freemium.
func (m *Manager) loadStatus(ctx context.Context, key string) *domain.LicenseStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache != nil && m.cache.LicenseKey == key {
		return m.cache.Clone()
	}

	status, err := m.repo.LoadStatus(ctx)
	if err != nil {
		m.logger.Warn("failed to load license status", "error", err)
		return domain.FreemiumStatus()
	}
	if status == nil {
		return domain.FreemiumStatus()
	}
	m.cache = status.Clone()
	return status
}

// StoreStatus persists the key and status together and updates the in-memory cache.
func (m *Manager) StoreStatus(ctx context.Context, status *domain.LicenseStatus) error {
	status = status.Normalize().Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.Save(ctx, status); err != nil {
		return err
	}
	m.cache = status
	return nil
}

// Clear resets to freemium and removes the stored key and status.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.Delete(ctx); err != nil {
		return err
	}
	m.cache = domain.FreemiumStatus()
	m.logger.Info("license cleared")
	return nil
}

// Activate validates a new key and stores it on success.
// A failed activation leaves the stored status untouched.
func (m *Manager) Activate(ctx context.Context, licenseKey string) (*domain.LicenseStatus, domain.ValidationResult, error) {
	key := strings.TrimSpace(licenseKey)
	if key == "" {
		return nil, domain.InputFailure(domain.MsgLicenseKeyRequired), nil
	}

	result := m.validator.Validate(ctx, key)
	if !result.Valid {
		return nil, result, nil
	}

	status := domain.NewPremiumStatus(key, result.License, m.now())
	if err := m.StoreStatus(ctx, status); err != nil {
		return nil, result, err
	}

	m.logger.Info("license activated", "plan", status.Plan, "expires", status.ExpiresAt)
	return status.Clone(), result, nil
}

// Refresh drops the in-memory cache so the next call reads storage again.
func (m *Manager) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = nil
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}
