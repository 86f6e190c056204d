package application_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/lingua/internal/licensing/application"
	"github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/felixgeelhaar/lingua/internal/licensing/infrastructure/persistence"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/kvstore"
	"github.com/felixgeelhaar/lingua/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository is an in-memory repository for testing.
type mockRepository struct {
	mu      sync.Mutex
	key     string
	status  *domain.LicenseStatus
	saves   int
	loadErr error
	saveErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{}
}

func (r *mockRepository) LoadKey(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key, r.loadErr
}

func (r *mockRepository) LoadStatus(ctx context.Context) (*domain.LicenseStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.status.Clone(), nil
}

func (r *mockRepository) Save(ctx context.Context, status *domain.LicenseStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.status = status.Clone()
	r.key = ""
	if status.IsPremium {
		r.key = status.LicenseKey
	}
	return nil
}

func (r *mockRepository) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key = ""
	r.status = nil
	return nil
}

// stubValidator returns a fixed result and counts calls.
type stubValidator struct {
	result domain.ValidationResult
	calls  atomic.Int32
	delay  time.Duration
}

func (v *stubValidator) Validate(ctx context.Context, licenseKey string) domain.ValidationResult {
	v.calls.Add(1)
	if v.delay > 0 {
		time.Sleep(v.delay)
	}
	return v.result
}

// ctxValidator fails like an aborted request when its context is done.
type ctxValidator struct{}

func (ctxValidator) Validate(ctx context.Context, licenseKey string) domain.ValidationResult {
	if err := ctx.Err(); err != nil {
		return domain.ValidationResult{Error: err.Error(), Failure: domain.FailureTransport}
	}
	return domain.ValidationResult{Valid: true, License: &domain.LicenseInfo{Plan: "pro"}}
}

var (
	testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	day     = 24 * time.Hour
)

func newTestManager(repo domain.Repository, validator domain.Validator) *application.Manager {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return application.NewManager(repo, validator, logger).
		WithClock(func() time.Time { return testNow })
}

func premiumStored(key string, validatedAt time.Time) *domain.LicenseStatus {
	return domain.NewPremiumStatus(key, &domain.LicenseInfo{Email: "user@example.com", Plan: "pro"}, validatedAt)
}

func TestManager_GetStatus_NoKey(t *testing.T) {
	for _, key := range []string{"", "   ", "\t"} {
		repo := newMockRepository()
		repo.key = key
		validator := &stubValidator{}

		status := newTestManager(repo, validator).GetStatus(context.Background())

		assert.False(t, status.IsPremium)
		assert.Empty(t, status.LicenseKey)
		assert.Empty(t, status.Email)
		assert.Nil(t, status.ExpiresAt)
		assert.Equal(t, int32(0), validator.calls.Load())
	}
}

func TestManager_GetStatus_CacheHit(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow.Add(-time.Hour))
	validator := &stubValidator{}
	metrics := observability.NewInMemoryMetrics()

	manager := newTestManager(repo, validator).WithMetrics(metrics)

	for i := 0; i < 10; i++ {
		status := manager.GetStatus(context.Background())
		assert.True(t, status.IsPremium)
	}
	assert.Equal(t, int32(0), validator.calls.Load())
	assert.Equal(t, int64(10), metrics.GetCounter(application.MetricCacheHit))
}

func TestManager_GetStatus_CacheBoundaryIsStrict(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow.Add(-domain.CacheDuration))
	validator := &stubValidator{result: domain.ValidationResult{Valid: true}}

	newTestManager(repo, validator).GetStatus(context.Background())

	assert.Equal(t, int32(1), validator.calls.Load())
}

func TestManager_GetStatus_RevalidatesWhenExpired(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow.Add(-2*day))

	expires := testNow.Add(30 * day)
	validator := &stubValidator{result: domain.ValidationResult{
		Valid:   true,
		License: &domain.LicenseInfo{Email: "new@example.com", ExpiresAt: &expires, Plan: "pro"},
	}}

	status := newTestManager(repo, validator).GetStatus(context.Background())

	require.True(t, status.IsPremium)
	assert.Equal(t, "new@example.com", status.Email)
	assert.True(t, testNow.Equal(*status.ValidatedAt))
	assert.True(t, testNow.Add(domain.CacheDuration).Equal(*status.CachedUntil))
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, "new@example.com", repo.status.Email)
}

func TestManager_GetStatus_RejectedDemotesWithoutGrace(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow.Add(-2*day))
	validator := &stubValidator{result: domain.ValidationResult{Error: "License revoked", Failure: domain.FailureRejected}}

	status := newTestManager(repo, validator).GetStatus(context.Background())

	assert.False(t, status.IsPremium)
	require.NotNil(t, repo.status)
	assert.False(t, repo.status.IsPremium)
	assert.Empty(t, repo.key)
}

func TestManager_GetStatus_GracePeriodBoundary(t *testing.T) {
	tests := []struct {
		name            string
		validatedAgo    time.Duration
		expectedPremium bool
	}{
		{"two days ago", 2 * day, true},
		{"7 days minus a minute", domain.GracePeriodDuration - time.Minute, true},
		{"7 days plus a minute", domain.GracePeriodDuration + time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			repo.key = "KEY-1"
			previous := premiumStored("KEY-1", testNow.Add(-tt.validatedAgo))
			repo.status = previous
			validator := &stubValidator{result: domain.ValidationResult{Error: "dial tcp: connection refused", Failure: domain.FailureTransport}}

			status := newTestManager(repo, validator).GetStatus(context.Background())

			assert.Equal(t, tt.expectedPremium, status.IsPremium)
			if tt.expectedPremium {
				assert.Equal(t, previous, status)
			} else {
				assert.Equal(t, domain.FreemiumStatus(), status)
			}
			// transport failures never overwrite the stored record
			assert.Equal(t, 0, repo.saves)
			assert.Equal(t, "KEY-1", repo.key)
		})
	}
}

func TestManager_GetStatus_GraceRetriesEveryCall(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow.Add(-3*day))
	validator := &stubValidator{result: domain.ValidationResult{Error: "timeout", Failure: domain.FailureTransport}}
	manager := newTestManager(repo, validator)

	manager.GetStatus(context.Background())
	manager.GetStatus(context.Background())

	assert.Equal(t, int32(2), validator.calls.Load())
}

func TestManager_GetStatus_TransportFailureFromFreemium(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	validator := &stubValidator{result: domain.ValidationResult{Error: "timeout", Failure: domain.FailureTransport}}

	status := newTestManager(repo, validator).GetStatus(context.Background())

	assert.False(t, status.IsPremium)
}

func TestManager_GetStatus_StorageErrorDegrades(t *testing.T) {
	repo := newMockRepository()
	repo.loadErr = errors.New("disk gone")
	validator := &stubValidator{}

	status := newTestManager(repo, validator).GetStatus(context.Background())

	assert.False(t, status.IsPremium)
	assert.Equal(t, int32(0), validator.calls.Load())
}

func TestManager_GetStatus_CollapsesConcurrentValidations(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow.Add(-2*day))
	validator := &stubValidator{
		result: domain.ValidationResult{Valid: true},
		delay:  50 * time.Millisecond,
	}
	manager := newTestManager(repo, validator)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, manager.GetStatus(context.Background()).IsPremium)
		}()
	}
	wg.Wait()

	assert.Less(t, validator.calls.Load(), int32(8))
}

func TestManager_GetStatus_CallerCancellationDoesNotFailValidation(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow.Add(-10*day))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status := newTestManager(repo, ctxValidator{}).GetStatus(ctx)

	require.True(t, status.IsPremium)
	assert.True(t, testNow.Equal(*status.ValidatedAt))
	assert.Equal(t, 1, repo.saves)
}

func TestManager_StoreStatus(t *testing.T) {
	repo := newMockRepository()
	validator := &stubValidator{}
	manager := newTestManager(repo, validator)

	expires := testNow.Add(10 * day)
	status := domain.NewPremiumStatus("KEY-1", &domain.LicenseInfo{Email: "user@example.com", ExpiresAt: &expires}, testNow)

	require.NoError(t, manager.StoreStatus(context.Background(), status))

	assert.True(t, repo.status.IsPremium)
	assert.Equal(t, "user@example.com", repo.status.Email)
	assert.True(t, expires.Equal(*repo.status.ExpiresAt))
	assert.Equal(t, "KEY-1", repo.key)

	// served from cache without a validator call
	got := manager.GetStatus(context.Background())
	assert.Equal(t, "user@example.com", got.Email)
	assert.Equal(t, int32(0), validator.calls.Load())
}

func TestManager_StoreStatus_NormalizesFreemium(t *testing.T) {
	repo := newMockRepository()
	manager := newTestManager(repo, &stubValidator{})

	require.NoError(t, manager.StoreStatus(context.Background(), &domain.LicenseStatus{Email: "stale@example.com"}))
	assert.Equal(t, domain.FreemiumStatus(), repo.status)
}

func TestManager_StoreStatus_Error(t *testing.T) {
	repo := newMockRepository()
	repo.saveErr = errors.New("quota")

	err := newTestManager(repo, &stubValidator{}).StoreStatus(context.Background(), domain.FreemiumStatus())
	assert.Error(t, err)
}

func TestManager_Clear(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow)
	manager := newTestManager(repo, &stubValidator{})

	require.NoError(t, manager.Clear(context.Background()))

	assert.Empty(t, repo.key)
	assert.Nil(t, repo.status)
	assert.False(t, manager.GetStatus(context.Background()).IsPremium)
}

func TestManager_Activate(t *testing.T) {
	expires := testNow.Add(3 * day)
	validator := &stubValidator{result: domain.ValidationResult{
		Valid:   true,
		License: &domain.LicenseInfo{Email: "user@example.com", ExpiresAt: &expires, Plan: "pro"},
	}}
	repo := newMockRepository()
	manager := newTestManager(repo, validator)

	status, result, err := manager.Activate(context.Background(), " ABCDEFGHIJKLMNOP ")
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.NotNil(t, status)

	assert.True(t, status.IsPremium)
	assert.Equal(t, "ABCDEFGHIJKLMNOP", repo.key)

	warning := domain.CheckExpiration(status, testNow)
	assert.True(t, warning.ShouldShow)
	assert.Equal(t, 3, warning.DaysUntilExpiry)
}

func TestManager_Activate_FailureKeepsStoredState(t *testing.T) {
	repo := newMockRepository()
	repo.key = "OLD-KEY"
	repo.status = premiumStored("OLD-KEY", testNow)
	validator := &stubValidator{result: domain.ValidationResult{Error: "Unknown license", Failure: domain.FailureRejected}}
	manager := newTestManager(repo, validator)

	status, result, err := manager.Activate(context.Background(), "NEW-KEY")
	require.NoError(t, err)
	assert.Nil(t, status)
	assert.False(t, result.Valid)
	assert.ErrorIs(t, result.Err(), domain.ErrLicenseRejected)
	assert.Equal(t, "OLD-KEY", repo.key)
	assert.Equal(t, 0, repo.saves)
}

func TestManager_Activate_EmptyKey(t *testing.T) {
	validator := &stubValidator{}
	_, result, err := newTestManager(newMockRepository(), validator).Activate(context.Background(), "  ")

	require.NoError(t, err)
	assert.Equal(t, domain.FailureInput, result.Failure)
	assert.Equal(t, int32(0), validator.calls.Load())
}

func TestManager_Refresh(t *testing.T) {
	repo := newMockRepository()
	repo.key = "KEY-1"
	repo.status = premiumStored("KEY-1", testNow)
	manager := newTestManager(repo, &stubValidator{})

	assert.Equal(t, "user@example.com", manager.GetStatus(context.Background()).Email)

	// another process updates the stored record
	updated := premiumStored("KEY-1", testNow)
	updated.Email = "changed@example.com"
	repo.status = updated

	assert.Equal(t, "user@example.com", manager.GetStatus(context.Background()).Email)
	manager.Refresh()
	assert.Equal(t, "changed@example.com", manager.GetStatus(context.Background()).Email)
}

func TestManager_WithKVRepository(t *testing.T) {
	store := kvstore.NewMemoryStore()
	repo := persistence.NewKVRepository(store)
	expires := testNow.Add(3 * day)
	validator := &stubValidator{result: domain.ValidationResult{
		Valid:   true,
		License: &domain.LicenseInfo{Email: "user@example.com", ExpiresAt: &expires},
	}}
	manager := newTestManager(repo, validator)
	ctx := context.Background()

	_, _, err := manager.Activate(ctx, "ABCDEFGHIJKLMNOP")
	require.NoError(t, err)

	// a fresh manager over the same store sees the cached decision
	fresh := newTestManager(repo, validator)
	status := fresh.GetStatus(ctx)
	assert.True(t, status.IsPremium)
	assert.Equal(t, "user@example.com", status.Email)
	assert.Equal(t, int32(1), validator.calls.Load())
}
