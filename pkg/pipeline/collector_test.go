package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testTick = 5 * time.Millisecond

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("task did not stop")
		return nil
	}
}

func TestCollectorTriggerThenQuit(t *testing.T) {
	ctx := context.Background()
	sampler := &countingSampler{}
	control := NewMailbox[CollectorMessage](4)
	out := NewMailbox[PublisherMessage](4)
	m := newTestMetrics()
	c := NewCollector(sampler, testTick, control, out, zaptest.NewLogger(t), m)

	done := make(chan error, 1)
	go func() { done <- c.Run() }()

	require.Eventually(t, func() bool { return sampler.n.Load() >= 5 }, 2*time.Second, time.Millisecond)
	require.NoError(t, control.Send(ctx, TriggerAggregation))
	require.NoError(t, control.Send(ctx, CollectorQuit))
	require.NoError(t, waitErr(t, done))

	msg, ok := out.TryReceive()
	require.True(t, ok)
	assert.Equal(t, Deliver, msg.Kind)
	assert.GreaterOrEqual(t, msg.Measurement.SampleCount, uint32(3))
	assert.InDelta(t, 0.1, msg.Measurement.CPUUtilization, 1e-9)
	assert.InDelta(t, 0.3, msg.Measurement.MaxMemUtilization, 1e-9)

	_, ok = out.TryReceive()
	assert.False(t, ok, "exactly one aggregate expected")
	assert.True(t, control.Closed())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AggregationsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TaskRunning.WithLabelValues(TaskCollector)))
}

func TestCollectorThreeTriggers(t *testing.T) {
	ctx := context.Background()
	control := NewMailbox[CollectorMessage](4)
	out := NewMailbox[PublisherMessage](4)
	c := NewCollector(&countingSampler{}, testTick, control, out, zaptest.NewLogger(t), nil)

	done := make(chan error, 1)
	go func() { done <- c.Run() }()

	for i := 1; i <= 3; i++ {
		require.NoError(t, control.Send(ctx, TriggerAggregation))
		require.Eventually(t, func() bool { return out.Len() == i }, 2*time.Second, time.Millisecond)
	}
	require.NoError(t, control.Send(ctx, CollectorQuit))
	require.NoError(t, waitErr(t, done))

	var last time.Time
	for i := 0; i < 3; i++ {
		msg, ok := out.TryReceive()
		require.True(t, ok)
		assert.GreaterOrEqual(t, msg.Measurement.SampleCount, uint32(1))
		assert.True(t, msg.Measurement.Timestamp.After(last), "aggregates must be in production order")
		last = msg.Measurement.Timestamp
	}
	_, ok := out.TryReceive()
	assert.False(t, ok)
}

func TestCollectorQuitDiscardsBuffer(t *testing.T) {
	control := NewMailbox[CollectorMessage](1)
	out := NewMailbox[PublisherMessage](1)
	c := NewCollector(&countingSampler{}, testTick, control, out, zaptest.NewLogger(t), nil)
	require.NoError(t, control.Send(context.Background(), CollectorQuit))

	require.NoError(t, c.Run())
	assert.Equal(t, 0, out.Len())
}

func TestCollectorStopsWhenDownstreamClosed(t *testing.T) {
	control := NewMailbox[CollectorMessage](1)
	out := NewMailbox[PublisherMessage](1)
	out.Close()
	c := NewCollector(&countingSampler{}, testTick, control, out, zaptest.NewLogger(t), nil)
	require.NoError(t, control.Send(context.Background(), TriggerAggregation))

	err := c.Run()
	assert.ErrorIs(t, err, ErrMailboxClosed)
	assert.True(t, control.Closed())
	assert.ErrorIs(t, control.Send(context.Background(), TriggerAggregation), ErrMailboxClosed)
}
