package observability

import (
	"log/slog"
	"time"
)

// Timer measures a single operation, typically one provider call.
type Timer struct {
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
	tags      []Tag
}

// StartTimer starts timing operation.
func StartTimer(operation string) *Timer {
	return &Timer{
		operation: operation,
		start:     time.Now(),
	}
}

// WithLogger logs the outcome when the timer stops.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records the outcome against the operation metrics.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags labels the recorded metrics, e.g. with the provider id.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// StopWithError records the duration and counts err as a failure when it is non-nil.
func (t *Timer) StopWithError(err error) time.Duration {
	duration := time.Since(t.start)

	if t.logger != nil {
		args := []any{"operation", t.operation, "duration_ms", duration.Milliseconds()}
		for _, tag := range t.tags {
			args = append(args, tag.Key, tag.Value)
		}
		if err != nil {
			t.logger.Warn("operation failed", append(args, "error", err)...)
		} else {
			t.logger.Debug("operation completed", args...)
		}
	}

	if t.metrics != nil {
		tags := make([]Tag, 0, len(t.tags)+1)
		tags = append(tags, t.tags...)
		tags = append(tags, T("operation", t.operation))

		t.metrics.Timing(MetricOperationDuration, duration, tags...)
		t.metrics.Counter(MetricOperationTotal, 1, tags...)
		if err != nil {
			t.metrics.Counter(MetricOperationErrors, 1, tags...)
		}
	}

	return duration
}
