package agent

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/metrics-agent/internal/server"
	"github.com/metrics-agent/pkg/config"
	"github.com/metrics-agent/pkg/logger"
	"github.com/metrics-agent/pkg/measurement"
	"github.com/metrics-agent/pkg/metrics"
	"github.com/metrics-agent/pkg/pipeline"
	"github.com/metrics-agent/pkg/util"
)

const enableProcessMetrics = true

func run(ctx context.Context, cfg *config.Config) error {
	// 1. 初始化日志
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("日志初始化失败: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.SetDefaultComponent("agent")
	log := logger.GetLogger()

	util.PrintBanner(os.Stdout, "metrics-agent", "cyan",
		fmt.Sprintf("namespace=%s service=%s period=%s dryrun=%t",
			cfg.Sink.Namespace, cfg.Sink.ServiceName, cfg.Monitor.PublishPeriod(), cfg.Sink.DryRun))

	// 2. 初始化 sink，失败直接退出（任何任务启动前）
	s, err := newSink(ctx, cfg.Sink, log)
	if err != nil {
		return fmt.Errorf("初始化 sink 失败: %w", err)
	}

	// 3. 采样源，输出当前内存计量来源
	source := measurement.NewHostSource(measurement.DefaultCgroupRoot, log.Named("sampler"))
	logger.Info("memory accounting", zap.String("source", source.Describe()))

	// 4. 自监控指标
	registry := metrics.NewRegistry(enableProcessMetrics)
	pm := metrics.NewMetricFactory(registry).NewPipelineMetrics()

	agent := pipeline.New(measurement.NewSampler(source), s, pipeline.Options{
		Tick:        cfg.Monitor.Tick,
		Period:      cfg.Monitor.PublishPeriod(),
		QueueSize:   cfg.Monitor.QueueSize,
		SendTimeout: cfg.Sink.SendTimeout,
	}, log, pm)

	// 5. 流水线与 HTTP 服务并行；任一方结束即通知另一方退出
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		return agent.Run(gctx)
	})
	if cfg.Server.Enable {
		srv := server.NewHTTPServer(cfg.Server, log.Named("http"), registry, agent)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	logger.Info("agent started",
		zap.String("sink", s.Name()),
		zap.Duration("tick", cfg.Monitor.Tick),
		zap.Duration("period", cfg.Monitor.PublishPeriod()))

	if err := g.Wait(); err != nil {
		return err
	}
	sent, failed := agent.Stats()
	logger.Info("agent exited", zap.Uint64("published", sent), zap.Uint64("failed", failed))
	return nil
}
