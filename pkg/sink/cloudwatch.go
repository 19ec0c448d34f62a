package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/metrics-agent/pkg/measurement"
)

// ErrNoRegion 无法从配置或默认凭证链解析出 AWS region
var ErrNoRegion = errors.New("aws region not resolved")

// CloudWatch 指标名与维度
const (
	MetricCPUUtilization       = "CPUUtilization"
	MetricMemoryUtilization    = "MemoryUtilization"
	MetricMaxMemoryUtilization = "MaxMemoryUtilization"
	MetricSampleCount          = "SampleCount"
	DimensionServiceName       = "ServiceName"
)

// putMetricDataAPI cloudwatch.Client 的子集，单测替换为 fake
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchSink 通过 PutMetricData 发布聚合结果
type CloudWatchSink struct {
	client      putMetricDataAPI
	namespace   string
	serviceName string
	log         *zap.Logger
}

// CloudWatchOptions CloudWatch sink 构造参数
type CloudWatchOptions struct {
	Namespace   string
	ServiceName string
	Region      string // 为空时使用默认链（AWS_REGION、共享配置、ECS 元数据等）
}

// NewCloudWatchSink 解析 AWS 默认配置并创建客户端，失败时进程应直接退出
func NewCloudWatchSink(ctx context.Context, opts CloudWatchOptions, log *zap.Logger) (*CloudWatchSink, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		return nil, ErrNoRegion
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("cloudwatch sink ready", zap.String("region", awsCfg.Region), zap.String("namespace", opts.Namespace))
	return newCloudWatchSink(cloudwatch.NewFromConfig(awsCfg), opts, log), nil
}

func newCloudWatchSink(client putMetricDataAPI, opts CloudWatchOptions, log *zap.Logger) *CloudWatchSink {
	return &CloudWatchSink{
		client:      client,
		namespace:   opts.Namespace,
		serviceName: opts.ServiceName,
		log:         log,
	}
}

func (s *CloudWatchSink) Name() string { return "cloudwatch" }

func (s *CloudWatchSink) Send(ctx context.Context, m measurement.Measurement) error {
	_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(s.namespace),
		MetricData: s.metricData(m),
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	s.log.Debug("published to cloudwatch", zap.Object("measurement", m))
	return nil
}

// metricData 利用率换算为 0-100 的 Percent
func (s *CloudWatchSink) metricData(m measurement.Measurement) []types.MetricDatum {
	dims := []types.Dimension{{Name: aws.String(DimensionServiceName), Value: aws.String(s.serviceName)}}
	ts := aws.Time(m.Timestamp)
	datum := func(name string, value float64, unit types.StandardUnit) types.MetricDatum {
		return types.MetricDatum{
			MetricName: aws.String(name),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       unit,
			Value:      aws.Float64(value),
		}
	}
	return []types.MetricDatum{
		datum(MetricCPUUtilization, m.CPUUtilization*100, types.StandardUnitPercent),
		datum(MetricMemoryUtilization, m.MemUtilization*100, types.StandardUnitPercent),
		datum(MetricMaxMemoryUtilization, m.MaxMemUtilization*100, types.StandardUnitPercent),
		datum(MetricSampleCount, float64(m.SampleCount), types.StandardUnitCount),
	}
}
