package probe

import (
	"fmt"
	"time"

	"github.com/dep2p/go-kadtable/config"
)

// Config 探测器配置
type Config struct {
	// RatePerSecond 每秒最多发出的探测数
	RatePerSecond float64

	// Burst 令牌桶突发容量
	Burst int

	// QueueSize 待发送队列长度
	QueueSize int

	// MaxOutstanding 未完成探测上限
	MaxOutstanding int

	// SendTimeout 单次发送超时
	SendTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return fromProbe(config.DefaultProbeConfig())
}

// ConfigFromUnified 从统一配置创建探测器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return fromProbe(cfg.Probe)
}

func fromProbe(pc config.ProbeConfig) Config {
	return Config{
		RatePerSecond:  pc.RatePerSecond,
		Burst:          pc.Burst,
		QueueSize:      pc.QueueSize,
		MaxOutstanding: pc.MaxOutstanding,
		SendTimeout:    pc.SendTimeout.Duration(),
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.RatePerSecond <= 0 || c.Burst <= 0 || c.QueueSize <= 0 ||
		c.MaxOutstanding <= 0 || c.SendTimeout <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidConfig, c)
	}
	return nil
}
