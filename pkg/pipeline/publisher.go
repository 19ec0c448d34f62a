package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/metrics-agent/pkg/measurement"
	"github.com/metrics-agent/pkg/metrics"
	"github.com/metrics-agent/pkg/sink"
)

// Publisher 从交接队列取出聚合结果发送到 sink。
// 单次发送失败只记录日志，不影响后续消息。
type Publisher struct {
	mu          sync.Mutex // 同一时刻最多一个在途发送
	sink        sink.Sink
	inbox       *Mailbox[PublisherMessage]
	sendTimeout time.Duration
	log         *zap.Logger
	metrics     *metrics.PipelineMetrics

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewPublisher sendTimeout <= 0 表示不限制单次发送时长
func NewPublisher(s sink.Sink, inbox *Mailbox[PublisherMessage], sendTimeout time.Duration, log *zap.Logger, m *metrics.PipelineMetrics) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		sink:        s,
		inbox:       inbox,
		sendTimeout: sendTimeout,
		log:         log,
		metrics:     m,
	}
}

// Run 处理消息直到收到 Quit，退出时关闭收件队列；Quit 之后排队的消息不再处理
func (p *Publisher) Run() error {
	defer p.inbox.Close()
	p.metrics.SetTaskRunning(TaskPublisher, true)
	defer p.metrics.SetTaskRunning(TaskPublisher, false)

	p.log.Info("publisher started", zap.String("sink", p.sink.Name()))
	for {
		msg, err := p.inbox.Receive(context.Background())
		if err != nil {
			return err
		}
		switch msg.Kind {
		case Deliver:
			p.publish(msg.Measurement)
		case PublisherQuit:
			p.log.Info("publisher stopped",
				zap.Uint64("sent", p.sent.Load()),
				zap.Uint64("failed", p.failed.Load()),
				zap.Int("skipped", p.inbox.Len()))
			return nil
		}
	}
}

func (p *Publisher) publish(m measurement.Measurement) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx := context.Background()
	if p.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.sendTimeout)
		defer cancel()
	}

	start := time.Now()
	err := p.sink.Send(ctx, m)
	p.metrics.ObservePublish(p.sink.Name(), err, time.Since(start))
	if err != nil {
		p.failed.Add(1)
		p.log.Error("publish failed", zap.String("sink", p.sink.Name()), zap.Object("measurement", m), zap.Error(err))
		return
	}
	p.sent.Add(1)
	p.log.Info("published", zap.String("sink", p.sink.Name()), zap.Object("measurement", m))
}

// Stats 已成功与失败的发送次数
func (p *Publisher) Stats() (sent, failed uint64) {
	return p.sent.Load(), p.failed.Load()
}
