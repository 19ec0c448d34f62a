package sink

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/metrics-agent/pkg/measurement"
)

// ConsoleSink dry-run 模式下把聚合结果写到控制台
type ConsoleSink struct {
	namespace   string
	serviceName string
	out         io.Writer
	log         *zap.Logger
}

// NewConsoleSink out 为空时写 stdout
func NewConsoleSink(namespace, serviceName string, out io.Writer, log *zap.Logger) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsoleSink{namespace: namespace, serviceName: serviceName, out: out, log: log}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Send(_ context.Context, m measurement.Measurement) error {
	_, err := fmt.Fprintf(s.out, "[%s] ServiceName=%s %s\n", s.namespace, s.serviceName, m)
	if err != nil {
		return fmt.Errorf("write console: %w", err)
	}
	s.log.Debug("dry-run publish", zap.Object("measurement", m))
	return nil
}
