package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/metrics-agent/pkg/measurement"
	"github.com/metrics-agent/pkg/metrics"
)

// countingSampler 每次采样返回递增的时间戳
type countingSampler struct {
	n atomic.Int64
}

func (s *countingSampler) Sample() measurement.Measurement {
	i := s.n.Add(1)
	return measurement.Measurement{
		Timestamp:         time.Unix(i, 0),
		CPUUtilization:    0.1,
		MemUtilization:    0.2,
		MaxMemUtilization: 0.3,
		SampleCount:       1,
	}
}

var errSinkDown = errors.New("sink down")

// recordingSink 记录每次调用，failEvery>0 时每 failEvery 次调用失败一次
type recordingSink struct {
	mu        sync.Mutex
	failEvery int
	calls     int
	delivered []measurement.Measurement
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(_ context.Context, m measurement.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failEvery > 0 && s.calls%s.failEvery == 0 {
		return errSinkDown
	}
	s.delivered = append(s.delivered, m)
	return nil
}

func (s *recordingSink) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *recordingSink) Delivered() []measurement.Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]measurement.Measurement(nil), s.delivered...)
}

// hangingSink 阻塞直到 ctx 超时
type hangingSink struct{}

func (hangingSink) Name() string { return "hanging" }

func (hangingSink) Send(ctx context.Context, _ measurement.Measurement) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestMetrics() *metrics.PipelineMetrics {
	return metrics.NewMetricFactory(metrics.NewRegistry(false)).NewPipelineMetrics()
}
