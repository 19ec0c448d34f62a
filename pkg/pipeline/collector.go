package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/metrics-agent/pkg/measurement"
	"github.com/metrics-agent/pkg/metrics"
)

// Sampler 单次采样，不返回错误（measurement.Sampler 实现）
type Sampler interface {
	Sample() measurement.Measurement
}

// Collector 按固定 tick 采样并缓存，收到 TriggerAggregation 时聚合并转发给发布任务。
// 采样器与缓冲区都由该任务独占。
type Collector struct {
	sampler Sampler
	tick    time.Duration
	control *Mailbox[CollectorMessage]
	out     *Mailbox[PublisherMessage]
	log     *zap.Logger
	metrics *metrics.PipelineMetrics

	buffer []measurement.Measurement
}

func NewCollector(sampler Sampler, tick time.Duration, control *Mailbox[CollectorMessage], out *Mailbox[PublisherMessage], log *zap.Logger, m *metrics.PipelineMetrics) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		sampler: sampler,
		tick:    tick,
		control: control,
		out:     out,
		log:     log,
		metrics: m,
	}
}

// Run 运行到收到 Quit 或转发失败；转发失败时返回错误。
// 退出时关闭控制队列，之后的触发请求得到 ErrMailboxClosed。
func (c *Collector) Run() error {
	defer c.control.Close()
	c.metrics.SetTaskRunning(TaskCollector, true)
	defer c.metrics.SetTaskRunning(TaskCollector, false)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	c.log.Info("collector started", zap.Duration("tick", c.tick))
	for {
		// 1. 采样并追加到缓冲区
		c.buffer = append(c.buffer, c.sampler.Sample())
		c.metrics.ObserveSample()

		// 2. 非阻塞检查控制消息
		if msg, ok := c.control.TryReceive(); ok {
			switch msg {
			case TriggerAggregation:
				if err := c.flush(); err != nil {
					c.log.Error("forward aggregate failed, collector stopping", zap.Error(err))
					return err
				}
			case CollectorQuit:
				c.log.Info("collector stopped", zap.Int("discarded_samples", len(c.buffer)))
				return nil
			}
		}

		// 3. 等待下一个 tick
		<-ticker.C
	}
}

// flush 聚合缓冲区，成功后清空（保留容量）并转发
func (c *Collector) flush() error {
	agg, ok := measurement.Aggregate(c.buffer)
	if !ok {
		c.log.Debug("aggregation triggered with empty buffer")
		return nil
	}
	c.buffer = c.buffer[:0]

	if err := c.out.Send(context.Background(), DeliverMessage(agg)); err != nil {
		return fmt.Errorf("forward aggregate: %w", err)
	}
	c.metrics.ObserveAggregate(agg)
	c.log.Debug("aggregate forwarded", zap.Object("measurement", agg))
	return nil
}
