package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/metrics-agent/pkg/measurement"
)

// HostMetrics 最近一次聚合结果（与发布到 sink 的值一致，0-1）
type HostMetrics struct {
	CPUUtilization    prometheus.Gauge
	MemUtilization    prometheus.Gauge
	MaxMemUtilization prometheus.Gauge
	LastTimestamp     prometheus.Gauge
}

// NewHostMetrics 创建并注册聚合结果指标
func (f *MetricFactory) NewHostMetrics() *HostMetrics {
	return &HostMetrics{
		CPUUtilization:    f.gauge("host_cpu_utilization_ratio", "Median CPU utilization of the last aggregation window"),
		MemUtilization:    f.gauge("host_memory_utilization_ratio", "Median memory utilization of the last aggregation window"),
		MaxMemUtilization: f.gauge("host_memory_max_utilization_ratio", "Peak memory utilization of the last aggregation window"),
		LastTimestamp:     f.gauge("host_last_aggregate_timestamp_seconds", "Timestamp of the last aggregated measurement"),
	}
}

// Set 更新为最新聚合值
func (h *HostMetrics) Set(m measurement.Measurement) {
	if h == nil {
		return
	}
	h.CPUUtilization.Set(m.CPUUtilization)
	h.MemUtilization.Set(m.MemUtilization)
	h.MaxMemUtilization.Set(m.MaxMemUtilization)
	h.LastTimestamp.Set(float64(m.Timestamp.UnixNano()) / 1e9)
}
