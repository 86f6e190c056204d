package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimer_StopWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantErrors int64
		wantLog    string
	}{
		{"success", nil, 0, "operation completed"},
		{"failure", errors.New("provider down"), 1, "operation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			metrics := NewInMemoryMetrics()

			StartTimer("translate").
				WithLogger(logger).
				WithMetrics(metrics).
				WithTags(T("provider", "openai")).
				StopWithError(tt.err)

			tags := []Tag{T("provider", "openai"), T("operation", "translate")}
			assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, tags...))
			assert.Equal(t, tt.wantErrors, metrics.GetCounter(MetricOperationErrors, tags...))
			assert.Len(t, metrics.GetTimings(MetricOperationDuration, tags...), 1)
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), "provider=openai")
		})
	}
}

func TestTimer_WithoutSinks(t *testing.T) {
	assert.NotPanics(t, func() {
		StartTimer("translate").StopWithError(errors.New("boom"))
	})
}
