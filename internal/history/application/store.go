package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
	"github.com/felixgeelhaar/lingua/internal/history/domain"
	"github.com/felixgeelhaar/lingua/pkg/observability"
	"github.com/google/uuid"
)

// Metric names recorded by the store.
const (
	MetricAppend  = "history.append"
	MetricSync    = "history.sync"
	MetricFetch   = "history.fetch"
	MetricPending = "history.pending"
)

// Store records translations and synchronizes them with the cloud.
// Mutations of the history and the pending queue are serialized.
type Store struct {
	repo    domain.Repository
	cloud   domain.CloudClient
	logger  *slog.Logger
	metrics observability.Metrics
	now     func() time.Time
	newID   func() (string, error)

	mu     sync.Mutex
	// syncMu allows one SyncToCloud at a time so overlapping callers never
	// upload the same pending items twice.
	syncMu sync.Mutex
}

// NewStore creates a history store. cloud may be nil when no remote API is configured.
func NewStore(repo domain.Repository, cloud domain.CloudClient, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:    repo,
		cloud:   cloud,
		logger:  logger,
		metrics: observability.NoopMetrics{},
		now:     time.Now,
		newID:   newV7,
	}
}

func newV7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// WithClock overrides the time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// WithMetrics sets the metrics sink.
func (s *Store) WithMetrics(metrics observability.Metrics) *Store {
	if metrics != nil {
		s.metrics = metrics
	}
	return s
}

// Append records a translation under the session's trust level.
func (s *Store) Append(ctx context.Context, session domain.Session, details domain.Details) (*domain.Item, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIDGeneration, err)
	}
	item := domain.NewItem(id, details, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	history, pending, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	history = domain.Prepend(history, item, featuresDomain.HistoryLimit(session.Premium))
	if session.Premium {
		pending = domain.Enqueue(pending, item)
	}

	if err := s.repo.Save(ctx, history, pending); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	s.metrics.Counter(MetricAppend, 1)
	s.metrics.Gauge(MetricPending, float64(len(pending)))
	return &item, nil
}

// List returns the history, newest first.
func (s *Store) List(ctx context.Context) ([]domain.Item, error) {
	history, _, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.Item{}
	}
	return history, nil
}

// Clear removes the history and the pending queue.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Clear(ctx)
}

// PendingCount returns the number of items waiting for cloud sync.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	_, pending, err := s.repo.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// SyncToCloud pushes the whole pending queue in one request. On failure the
// queue is left as it was so a later attempt retries the same items.
func (s *Store) SyncToCloud(ctx context.Context, session domain.Session) domain.SyncResult {
	if err := s.checkCloudAccess(session); err != nil {
		return domain.SyncFailure(domain.KindOf(err), err)
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	_, pending, err := s.repo.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return domain.SyncFailure(domain.FailureStorage, err)
	}
	if len(pending) == 0 {
		return domain.SyncResult{Success: true}
	}

	start := s.now()
	if _, err := s.cloud.Sync(ctx, session.LicenseKey, pending); err != nil {
		s.metrics.Counter(MetricSync, 1, observability.T("outcome", "failure"))
		s.logger.Warn("history sync failed", "pending", len(pending), "error", err)
		return domain.SyncFailure(domain.FailureRemote, err)
	}
	s.metrics.Timing(MetricSync, s.now().Sub(start))

	sent := make(map[string]struct{}, len(pending))
	for _, item := range pending {
		sent[item.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, current, err := s.repo.Load(ctx)
	if err != nil {
		return domain.SyncFailure(domain.FailureStorage, err)
	}
	for i := range history {
		if _, ok := sent[history[i].ID]; ok {
			history[i].Synced = true
		}
	}
	remaining := make([]domain.Item, 0, len(current))
	for _, item := range current {
		if _, ok := sent[item.ID]; !ok {
			remaining = append(remaining, item)
		}
	}
	if err := s.repo.Save(ctx, history, remaining); err != nil {
		return domain.SyncFailure(domain.FailureStorage, err)
	}

	s.metrics.Counter(MetricSync, 1, observability.T("outcome", "success"))
	s.metrics.Gauge(MetricPending, float64(len(remaining)))
	s.logger.Info("history synced", "count", len(sent), "remaining", len(remaining))
	return domain.SyncResult{Success: true, SyncedCount: len(sent)}
}

// FetchFromCloud merges remote history into the local collection.
func (s *Store) FetchFromCloud(ctx context.Context, session domain.Session) domain.FetchResult {
	if err := s.checkCloudAccess(session); err != nil {
		return domain.FetchFailure(domain.KindOf(err), err)
	}

	remote, err := s.cloud.Fetch(ctx, session.LicenseKey)
	if err != nil {
		s.metrics.Counter(MetricFetch, 1, observability.T("outcome", "failure"))
		s.logger.Warn("history fetch failed", "error", err)
		return domain.FetchFailure(domain.FailureRemote, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, pending, err := s.repo.Load(ctx)
	if err != nil {
		return domain.FetchFailure(domain.FailureStorage, err)
	}

	merged, added := domain.Merge(history, remote)
	if err := s.repo.Save(ctx, merged, pending); err != nil {
		return domain.FetchFailure(domain.FailureStorage, err)
	}

	s.metrics.Counter(MetricFetch, 1, observability.T("outcome", "success"))
	return domain.FetchResult{Success: true, Added: added, Items: merged}
}

func (s *Store) checkCloudAccess(session domain.Session) error {
	if !session.Premium {
		return domain.ErrPremiumRequired
	}
	if session.LicenseKey == "" {
		return domain.ErrLicenseKeyRequired
	}
	if s.cloud == nil {
		return domain.ErrCloudNotConfigured
	}
	return nil
}
