package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_RecordsPerOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg, "curling")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "RegisterForEvent", "EventService")
	m.RecordOperationAttempt(ctx, "RegisterForEvent", "EventService")
	m.RecordOperationSuccess(ctx, "RegisterForEvent", "EventService")
	m.RecordOperationFailure(ctx, "RegisterForEvent", "EventService")
	m.RecordOperationDuration(ctx, "RegisterForEvent", "EventService", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("EventService", "RegisterForEvent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.successes.WithLabelValues("EventService", "RegisterForEvent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("EventService", "RegisterForEvent")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg, "curling")
	require.NoError(t, err)

	_, err = NewPrometheus(reg, "curling")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	m := NewNoop()
	assert.NotPanics(t, func() {
		m.RecordOperationAttempt(context.Background(), "op", "svc")
		m.RecordOperationDuration(context.Background(), "op", "svc", time.Second)
	})
}
