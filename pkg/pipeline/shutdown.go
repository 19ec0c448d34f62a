package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/metrics-agent/pkg/metrics"
	"github.com/metrics-agent/pkg/signal"
)

// State 关闭协调器状态：Idle -> Draining -> Done
type State int32

const (
	StateIdle State = iota
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

var errAlreadyDraining = errors.New("shutdown already started")

// Coordinator 等待第一个退出来源后按顺序排空流水线：
// 最后一次聚合 -> 停止采集并等待退出 -> 停止发布并等待退出
type Coordinator struct {
	control       *Mailbox[CollectorMessage]
	publisherIn   *Mailbox[PublisherMessage]
	collectorDone <-chan error
	publisherDone <-chan error
	log           *zap.Logger
	metrics       *metrics.PipelineMetrics

	state atomic.Int32
}

func NewCoordinator(control *Mailbox[CollectorMessage], publisherIn *Mailbox[PublisherMessage], collectorDone, publisherDone <-chan error, log *zap.Logger, m *metrics.PipelineMetrics) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		control:       control,
		publisherIn:   publisherIn,
		collectorDone: collectorDone,
		publisherDone: publisherDone,
		log:           log,
		metrics:       m,
	}
}

func (c *Coordinator) State() State {
	return State(c.state.Load())
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
	c.metrics.SetShutdownState(int(s))
}

// Run 阻塞等待 SIGINT/SIGTERM、quit 或 ctx 结束，然后执行 Drain
func (c *Coordinator) Run(ctx context.Context, quit <-chan struct{}) error {
	reason := signal.WaitForShutdown(ctx, c.log, quit)
	c.log.Info("shutdown requested", zap.String("reason", string(reason)))
	return c.Drain()
}

// Drain 每一步都等待上一步完成；两个任务都退出后才返回。
// 任一任务异常退出时返回其错误。
func (c *Coordinator) Drain() error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateDraining)) {
		return errAlreadyDraining
	}
	c.metrics.SetShutdownState(int(StateDraining))

	// 1. 触发最后一次聚合（尽力而为）
	if err := c.control.Send(context.Background(), TriggerAggregation); err != nil {
		c.log.Warn("final aggregation trigger failed", zap.Error(err))
	}

	// 2. 停止采集任务并等待退出
	if err := c.control.Send(context.Background(), CollectorQuit); err != nil {
		c.log.Warn("send quit to collector failed", zap.Error(err))
	}
	collectorErr := <-c.collectorDone
	c.log.Info("collector joined", zap.Error(collectorErr))

	// 3. 停止发布任务并等待退出
	if err := c.publisherIn.Send(context.Background(), QuitMessage()); err != nil {
		c.log.Warn("send quit to publisher failed", zap.Error(err))
	}
	publisherErr := <-c.publisherDone
	c.log.Info("publisher joined", zap.Error(publisherErr))

	c.setState(StateDone)
	if err := errors.Join(collectorErr, publisherErr); err != nil {
		return fmt.Errorf("pipeline stopped with error: %w", err)
	}
	c.log.Info("shutdown completed")
	return nil
}
