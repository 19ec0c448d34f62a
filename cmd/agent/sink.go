package agent

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metrics-agent/pkg/config"
	"github.com/metrics-agent/pkg/sink"
)

func initSinkFlags(root *cobra.Command) {
	f := root.Flags()

	f.StringP("namespace", "n", "", "-> CloudWatch metric namespace (指标命名空间)")
	f.StringP("service-name", "s", "", "-> ServiceName dimension value (服务名维度)")
	f.BoolP("dryrun", "d", defaultCfg.Sink.DryRun, "-> Print aggregates to the console instead of CloudWatch (只输出到控制台)")
	f.String("sink.region", defaultCfg.Sink.Region, "-> AWS region override (AWS 区域)")
	f.Duration("sink.send-timeout", defaultCfg.Sink.SendTimeout, "-> Timeout of a single publish (单次发送超时)")
}

// newSink dry-run 时使用控制台，否则创建 CloudWatch 客户端
func newSink(ctx context.Context, cfg config.SinkConfig, log *zap.Logger) (sink.Sink, error) {
	if cfg.DryRun {
		return sink.NewConsoleSink(cfg.Namespace, cfg.ServiceName, nil, log.Named("console")), nil
	}
	return sink.NewCloudWatchSink(ctx, sink.CloudWatchOptions{
		Namespace:   cfg.Namespace,
		ServiceName: cfg.ServiceName,
		Region:      cfg.Region,
	}, log.Named("cloudwatch"))
}
