package signal

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestWaitFirst(t *testing.T) {
	log := zaptest.NewLogger(t)

	t.Run("interrupt", func(t *testing.T) {
		sig := make(chan os.Signal, 1)
		sig <- os.Interrupt
		assert.Equal(t, ReasonInterrupt, waitFirst(context.Background(), log, sig, nil))
	})

	t.Run("terminate", func(t *testing.T) {
		sig := make(chan os.Signal, 1)
		sig <- syscall.SIGTERM
		assert.Equal(t, ReasonTerminate, waitFirst(context.Background(), log, sig, nil))
	})

	t.Run("quit", func(t *testing.T) {
		quit := make(chan struct{})
		close(quit)
		assert.Equal(t, ReasonQuit, waitFirst(context.Background(), log, nil, quit))
	})

	t.Run("context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.Equal(t, ReasonContext, waitFirst(ctx, log, nil, nil))
	})
}

func TestWaitForShutdownSignal(t *testing.T) {
	// 先注册一个接收者，避免 SIGTERM 默认行为结束测试进程
	guard := make(chan os.Signal, 1)
	ossignal.Notify(guard, syscall.SIGTERM)
	defer ossignal.Stop(guard)

	done := make(chan Reason, 1)
	go func() {
		done <- WaitForShutdown(context.Background(), zaptest.NewLogger(t), nil)
	}()

	// 等待 signal.Notify 生效后再投递信号
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case r := <-done:
		assert.Equal(t, ReasonTerminate, r)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForShutdown did not return after SIGTERM")
	}
}
