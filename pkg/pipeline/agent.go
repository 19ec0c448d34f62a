package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/metrics-agent/pkg/metrics"
	"github.com/metrics-agent/pkg/sink"
)

// Options 流水线参数
type Options struct {
	Tick        time.Duration // 采样间隔
	Period      time.Duration // 发布周期（心跳间隔）
	QueueSize   int           // 各交接队列容量
	SendTimeout time.Duration // 单次 sink 发送超时
}

// Agent 组装 Collector、Heartbeat、Publisher 与 Coordinator
type Agent struct {
	control *Mailbox[CollectorMessage]
	outbox  *Mailbox[PublisherMessage]

	collector   *Collector
	heartbeat   *Heartbeat
	publisher   *Publisher
	coordinator *Coordinator

	collectorDone chan error
	publisherDone chan error

	quit     chan struct{}
	stopOnce sync.Once
	log      *zap.Logger
}

func New(sampler Sampler, s sink.Sink, opts Options, log *zap.Logger, m *metrics.PipelineMetrics) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Agent{
		control:       NewMailbox[CollectorMessage](opts.QueueSize),
		outbox:        NewMailbox[PublisherMessage](opts.QueueSize),
		collectorDone: make(chan error, 1),
		publisherDone: make(chan error, 1),
		quit:          make(chan struct{}),
		log:           log,
	}
	a.collector = NewCollector(sampler, opts.Tick, a.control, a.outbox, log.Named(TaskCollector), m)
	a.heartbeat = NewHeartbeat(opts.Period, a.control, log.Named(TaskHeartbeat), m)
	a.publisher = NewPublisher(s, a.outbox, opts.SendTimeout, log.Named(TaskPublisher), m)
	a.coordinator = NewCoordinator(a.control, a.outbox, a.collectorDone, a.publisherDone, log.Named(TaskShutdown), m)
	return a
}

// Run 启动所有任务并阻塞到关闭流程完成，只能调用一次。
// ctx 结束、Stop 或进程信号都会触发关闭。
func (a *Agent) Run(ctx context.Context) error {
	go func() { a.publisherDone <- a.publisher.Run() }()
	go func() { a.collectorDone <- a.collector.Run() }()

	hbCtx, cancel := context.WithCancel(context.Background())
	hbDone := make(chan struct{})
	go func() {
		defer close(hbDone)
		a.heartbeat.Run(hbCtx)
	}()

	err := a.coordinator.Run(ctx, a.quit)

	cancel()
	<-hbDone
	return err
}

// Stop 请求关闭，可重复调用
func (a *Agent) Stop() {
	a.stopOnce.Do(func() { close(a.quit) })
}

func (a *Agent) State() State {
	return a.coordinator.State()
}

// Healthy 尚未开始关闭
func (a *Agent) Healthy() bool {
	return a.State() == StateIdle
}

func (a *Agent) Stats() (sent, failed uint64) {
	return a.publisher.Stats()
}
