package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	minTick = 10 * time.Millisecond
	// maxPeriod 发布周期上限（秒），一天
	maxPeriod = 24 * 3600
)

// Validate HTTP服务配置校验
func (h *ServerConfig) Validate() error {
	if err := valid.Struct(h); err != nil {
		return err
	}
	// 	校验Addr格式(必须是 ":port" 或 "ip:port")
	if h.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	// 	用net包解析地址，验证格式合法性
	_, err := net.ResolveTCPAddr("tcp", h.Addr)
	if err != nil {
		return fmt.Errorf("server.addr format invalid (expected: :port or ip:port), got %s: %w", h.Addr, err)
	}
	return nil
}

// Validate 采样配置校验：采样间隔必须明显小于发布周期，否则聚合没有意义
func (m *MonitorConfig) Validate() error {
	if err := valid.Struct(m); err != nil {
		return err
	}
	if m.Period > maxPeriod {
		return fmt.Errorf("monitor.period must be between 1 and %d seconds, got %d", maxPeriod, m.Period)
	}
	if m.Tick < minTick {
		return fmt.Errorf("monitor.tick must be at least %s, got %s", minTick, m.Tick)
	}
	if m.Tick >= m.PublishPeriod() {
		return fmt.Errorf("monitor.tick (%s) must be shorter than monitor.period (%s)", m.Tick, m.PublishPeriod())
	}
	return nil
}
