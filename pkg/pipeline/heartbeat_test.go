package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func runHeartbeat(h *Heartbeat) (context.CancelFunc, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Run(ctx)
	}()
	return cancel, done
}

func TestHeartbeatSendsTriggers(t *testing.T) {
	control := NewMailbox[CollectorMessage](8)
	cancel, done := runHeartbeat(NewHeartbeat(testTick, control, nil, nil))

	require.Eventually(t, func() bool { return control.Len() >= 2 }, 2*time.Second, time.Millisecond)
	cancel()
	<-done

	msg, ok := control.TryReceive()
	require.True(t, ok)
	assert.Equal(t, TriggerAggregation, msg)
}

func TestHeartbeatKeepsFiringAfterCollectorStopped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := newTestMetrics()
	control := NewMailbox[CollectorMessage](1)
	control.Close()

	cancel, done := runHeartbeat(NewHeartbeat(testTick, control, zap.New(core), m))
	require.Eventually(t, func() bool {
		return logs.FilterMessage("trigger aggregation failed").Len() >= 3
	}, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop on context cancel")
	}
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.TriggerErrorsTotal), 3.0)
}
