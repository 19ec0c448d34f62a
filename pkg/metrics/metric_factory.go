package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace 所有自监控指标的前缀
const Namespace = "metrics_agent"

// MetricFactory 指标工厂，用于统一创建指标（counter/gauge/histogram）。
type MetricFactory struct {
	reg prometheus.Registerer
}

// NewMetricFactory 创建指标工厂
func NewMetricFactory(reg prometheus.Registerer) *MetricFactory {
	return &MetricFactory{reg: reg}
}

func (f *MetricFactory) counter(name, help string) prometheus.Counter {
	return promauto.With(f.reg).NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	})
}

func (f *MetricFactory) gauge(name, help string) prometheus.Gauge {
	return promauto.With(f.reg).NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	})
}
