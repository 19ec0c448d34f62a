// Package pipeline 采样 -> 聚合 -> 发布流水线：各任务只通过有界 Mailbox 通信。
package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrMailboxClosed 接收方已退出，队列不再接受消息
var ErrMailboxClosed = errors.New("mailbox closed")

// Mailbox 有界、有序、单消费者的交接队列。
// 由接收方在退出时 Close，之后发送方得到 ErrMailboxClosed。
type Mailbox[T any] struct {
	ch        chan T
	done      chan struct{}
	closeOnce sync.Once
}

// NewMailbox capacity 小于 1 时按 1 处理
func NewMailbox[T any](capacity int) *Mailbox[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Mailbox[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// Send 队列满时阻塞（背压），直到有空位、接收方关闭或 ctx 结束
func (m *Mailbox[T]) Send(ctx context.Context, v T) error {
	select {
	case <-m.done:
		return ErrMailboxClosed
	default:
	}

	select {
	case m.ch <- v:
		return nil
	case <-m.done:
		return ErrMailboxClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryReceive 非阻塞读取
func (m *Mailbox[T]) TryReceive() (T, bool) {
	select {
	case v := <-m.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Receive 阻塞读取直到有消息、队列关闭或 ctx 结束
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-m.ch:
		return v, nil
	case <-m.done:
		return zero, ErrMailboxClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close 可重复调用
func (m *Mailbox[T]) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *Mailbox[T]) Closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *Mailbox[T]) Len() int { return len(m.ch) }
