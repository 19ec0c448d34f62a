package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Reason 触发关闭的来源
type Reason string

const (
	ReasonInterrupt Reason = "interrupt"
	ReasonTerminate Reason = "terminate"
	ReasonQuit      Reason = "quit"    // 内部退出请求
	ReasonContext   Reason = "context" // 父 context 结束
)

// WaitForShutdown 阻塞等待第一个退出来源：SIGINT、SIGTERM、quit 关闭或 ctx 结束
func WaitForShutdown(ctx context.Context, logger *zap.Logger, quit <-chan struct{}) Reason {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	return waitFirst(ctx, logger, sigChan, quit)
}

func waitFirst(ctx context.Context, logger *zap.Logger, sigChan <-chan os.Signal, quit <-chan struct{}) Reason {
	var reason Reason
	select {
	case sig := <-sigChan:
		reason = ReasonTerminate
		if sig == os.Interrupt {
			reason = ReasonInterrupt
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-quit:
		reason = ReasonQuit
		logger.Info("received quit request")
	case <-ctx.Done():
		reason = ReasonContext
		logger.Info("context done", zap.Error(ctx.Err()))
	}
	return reason
}
