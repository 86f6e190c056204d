// Package taskqueue runs background jobs on a bounded ants worker pool.
package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

var (
	// ErrQueueFull is returned when every worker is busy and the pool is nonblocking.
	ErrQueueFull = errors.New("task queue is full")

	// ErrQueueClosed is returned when submitting to a released pool.
	ErrQueueClosed = errors.New("task queue is closed")
)

// Options configures a Pool.
type Options struct {
	Size           int
	Nonblocking    bool
	ExpiryDuration time.Duration
}

// Pool is a bounded goroutine pool for background jobs.
type Pool struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// NewPool creates a pool with the given options.
func NewPool(opts Options, logger *slog.Logger) (*Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Size <= 0 {
		opts.Size = 1
	}

	antsOpts := []ants.Option{
		ants.WithNonblocking(opts.Nonblocking),
		ants.WithLogger(antsLogger{logger: logger}),
		ants.WithPanicHandler(func(p any) {
			logger.Error("background task panicked", "panic", p)
		}),
	}
	if opts.ExpiryDuration > 0 {
		antsOpts = append(antsOpts, ants.WithExpiryDuration(opts.ExpiryDuration))
	}

	p, err := ants.NewPool(opts.Size, antsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Pool{pool: p, logger: logger}, nil
}

// Submit schedules task on the pool.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := p.pool.Submit(task)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ants.ErrPoolOverload):
		return ErrQueueFull
	case errors.Is(err, ants.ErrPoolClosed):
		return ErrQueueClosed
	default:
		return fmt.Errorf("failed to submit task: %w", err)
	}
}

// Running returns the number of tasks currently executing.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release waits up to timeout for running tasks, then closes the pool.
func (p *Pool) Release(timeout time.Duration) error {
	if timeout <= 0 {
		p.pool.Release()
		return nil
	}
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.logger.Warn("worker pool did not drain in time", "timeout", timeout, "error", err)
		return err
	}
	return nil
}

type antsLogger struct {
	logger *slog.Logger
}

func (l antsLogger) Printf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "taskqueue")
}
