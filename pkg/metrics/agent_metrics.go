package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/metrics-agent/pkg/measurement"
)

// PipelineMetrics 采样/聚合/发布流水线的自监控指标。
// 所有方法允许 nil 接收者，未启用指标时直接传 nil。
type PipelineMetrics struct {
	SamplesTotal       prometheus.Counter
	AggregationsTotal  prometheus.Counter
	AggregateSamples   prometheus.Histogram
	TriggerErrorsTotal prometheus.Counter
	PublishTotal       *prometheus.CounterVec
	PublishDuration    *prometheus.HistogramVec
	TaskRunning        *prometheus.GaugeVec
	ShutdownState      prometheus.Gauge
	Host               *HostMetrics
}

// NewPipelineMetrics 创建并注册流水线指标
// 标签说明：
//
//	result: success / failure
//	sink:   console / cloudwatch
//	task:   collector / publisher / heartbeat
func (f *MetricFactory) NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		SamplesTotal:       f.counter("samples_total", "Total raw samples taken"),
		AggregationsTotal:  f.counter("aggregations_total", "Total aggregated measurements forwarded to the publisher"),
		TriggerErrorsTotal: f.counter("heartbeat_trigger_errors_total", "Aggregation triggers that could not be delivered to the collector"),
		AggregateSamples: promauto.With(f.reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "aggregate_sample_count",
			Help:      "Number of raw samples per aggregation window",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 ~ 512
		}),
		PublishTotal: promauto.With(f.reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "publish_total",
			Help:      "Sink send attempts by result",
		}, []string{"sink", "result"}),
		PublishDuration: promauto.With(f.reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "publish_duration_seconds",
			Help:      "Duration of sink send calls",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms ~ 10s
		}, []string{"sink"}),
		TaskRunning: promauto.With(f.reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "task_running",
			Help:      "Whether a pipeline task is running (1) or stopped (0)",
		}, []string{"task"}),
		ShutdownState: f.gauge("shutdown_state", "Shutdown coordinator state: 0 idle, 1 draining, 2 done"),
		Host:          f.NewHostMetrics(),
	}
}

func (p *PipelineMetrics) ObserveSample() {
	if p == nil {
		return
	}
	p.SamplesTotal.Inc()
}

func (p *PipelineMetrics) ObserveAggregate(m measurement.Measurement) {
	if p == nil {
		return
	}
	p.AggregationsTotal.Inc()
	p.AggregateSamples.Observe(float64(m.SampleCount))
	p.Host.Set(m)
}

func (p *PipelineMetrics) ObserveTriggerError() {
	if p == nil {
		return
	}
	p.TriggerErrorsTotal.Inc()
}

// ObservePublish 记录一次 sink 发送结果及耗时
func (p *PipelineMetrics) ObservePublish(sink string, err error, elapsed time.Duration) {
	if p == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	p.PublishTotal.WithLabelValues(sink, result).Inc()
	p.PublishDuration.WithLabelValues(sink).Observe(elapsed.Seconds())
}

func (p *PipelineMetrics) SetTaskRunning(task string, running bool) {
	if p == nil {
		return
	}
	v := 0.0
	if running {
		v = 1
	}
	p.TaskRunning.WithLabelValues(task).Set(v)
}

func (p *PipelineMetrics) SetShutdownState(state int) {
	if p == nil {
		return
	}
	p.ShutdownState.Set(float64(state))
}
