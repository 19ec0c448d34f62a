package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/metrics-agent/pkg/metrics"
)

// Heartbeat 按发布周期向采集任务发送 TriggerAggregation。
// 不参与关闭顺序：采集任务退出后继续无害地触发，直到 ctx 结束。
type Heartbeat struct {
	period  time.Duration
	control *Mailbox[CollectorMessage]
	log     *zap.Logger
	metrics *metrics.PipelineMetrics
}

func NewHeartbeat(period time.Duration, control *Mailbox[CollectorMessage], log *zap.Logger, m *metrics.PipelineMetrics) *Heartbeat {
	if log == nil {
		log = zap.NewNop()
	}
	return &Heartbeat{period: period, control: control, log: log, metrics: m}
}

func (h *Heartbeat) Run(ctx context.Context) {
	h.metrics.SetTaskRunning(TaskHeartbeat, true)
	defer h.metrics.SetTaskRunning(TaskHeartbeat, false)

	ticker := time.NewTicker(h.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.control.Send(ctx, TriggerAggregation); err != nil {
				if ctx.Err() != nil {
					return
				}
				h.metrics.ObserveTriggerError()
				h.log.Warn("trigger aggregation failed", zap.Error(err))
			}
		}
	}
}
