package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/lingua/internal/history/domain"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/taskqueue"
)

const (
	// RoutingKeySyncRequested is published when premium history needs pushing.
	RoutingKeySyncRequested = "history.sync.requested"

	// DefaultSyncTimeout bounds one background sync.
	DefaultSyncTimeout = 30 * time.Second
)

// Syncer pushes the pending queue to the cloud.
type Syncer interface {
	SyncToCloud(ctx context.Context, session domain.Session) domain.SyncResult
}

// SessionSource resolves the trust context a background job runs under.
type SessionSource func(ctx context.Context) domain.Session

// LocalDispatcher runs syncs on a single-worker pool. Requests that arrive
// while a sync is running collapse into one follow-up run using the most
// recent session.
type LocalDispatcher struct {
	syncer  Syncer
	pool    *taskqueue.Pool
	logger  *slog.Logger
	timeout time.Duration

	latest  atomic.Pointer[domain.Session]
	pending atomic.Bool
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewLocalDispatcher creates a dispatcher over pool.
func NewLocalDispatcher(syncer Syncer, pool *taskqueue.Pool, logger *slog.Logger) *LocalDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalDispatcher{
		syncer:  syncer,
		pool:    pool,
		logger:  logger,
		timeout: DefaultSyncTimeout,
	}
}

// WithTimeout overrides the per-sync deadline.
func (d *LocalDispatcher) WithTimeout(timeout time.Duration) *LocalDispatcher {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// DispatchSync schedules a sync and returns without waiting for it.
func (d *LocalDispatcher) DispatchSync(ctx context.Context, session domain.Session) error {
	d.latest.Store(&session)
	d.pending.Store(true)

	if !d.running.CompareAndSwap(false, true) {
		return nil
	}

	d.wg.Add(1)
	if err := d.pool.Submit(ctx, d.run); err != nil {
		d.running.Store(false)
		d.wg.Done()
		return fmt.Errorf("schedule history sync: %w", err)
	}
	return nil
}

func (d *LocalDispatcher) run() {
	defer d.wg.Done()

	for {
		if !d.pending.Swap(false) {
			d.running.Store(false)
			// Catch a request that arrived between the swap and the store.
			if d.pending.Load() && d.running.CompareAndSwap(false, true) {
				continue
			}
			return
		}
		d.syncOnce(*d.latest.Load())
	}
}

func (d *LocalDispatcher) syncOnce(session domain.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	result := d.syncer.SyncToCloud(ctx, session)
	if !result.Success {
		d.logger.Warn("background history sync failed", "error", result.Error)
		return
	}
	d.logger.Debug("background history sync finished", "synced", result.SyncedCount)
}

// Wait blocks until every scheduled sync has finished.
func (d *LocalDispatcher) Wait() {
	d.wg.Wait()
}

// syncRequest is the payload of RoutingKeySyncRequested. It carries no
// license key; the worker resolves its own session.
type syncRequest struct {
	Reason string `json:"reason"`
}

// EventDispatcher publishes sync requests for lingua-worker.
type EventDispatcher struct {
	publisher eventbus.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewEventDispatcher creates a dispatcher that publishes to publisher.
func NewEventDispatcher(publisher eventbus.Publisher, logger *slog.Logger) *EventDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventDispatcher{publisher: publisher, logger: logger, now: time.Now}
}

// DispatchSync publishes a sync request.
func (d *EventDispatcher) DispatchSync(ctx context.Context, _ domain.Session) error {
	event, err := eventbus.NewEvent(RoutingKeySyncRequested, syncRequest{Reason: "append"}, d.now())
	if err != nil {
		return err
	}
	if err := eventbus.PublishEvent(ctx, d.publisher, event); err != nil {
		return fmt.Errorf("publish history sync request: %w", err)
	}
	return nil
}

// SyncHandler consumes sync requests in the worker.
type SyncHandler struct {
	syncer  Syncer
	session SessionSource
	logger  *slog.Logger
	timeout time.Duration
}

// NewSyncHandler creates the worker-side handler.
func NewSyncHandler(syncer Syncer, session SessionSource, logger *slog.Logger) *SyncHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncHandler{syncer: syncer, session: session, logger: logger, timeout: DefaultSyncTimeout}
}

// EventTypes implements eventbus.Handler.
func (h *SyncHandler) EventTypes() []string {
	return []string{RoutingKeySyncRequested}
}

// Handle runs one sync. Failures are logged and acknowledged; the pending
// queue is durable, so the next request retries the same items.
func (h *SyncHandler) Handle(ctx context.Context, event *eventbus.Event) error {
	var req syncRequest
	if err := event.Decode(&req); err != nil {
		h.logger.Warn("ignoring malformed sync request", "event_id", event.EventID, "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	session := h.session(ctx)
	result := h.syncer.SyncToCloud(ctx, session)
	if !result.Success {
		h.logger.Warn("history sync request failed",
			"event_id", event.EventID,
			"reason", req.Reason,
			"error", result.Error,
		)
		return nil
	}

	h.logger.Info("history sync request handled",
		"event_id", event.EventID,
		"synced", result.SyncedCount,
	)
	return nil
}
