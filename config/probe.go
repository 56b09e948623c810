package config

import (
	"errors"
	"time"
)

// ProbeConfig 存活探测配置
type ProbeConfig struct {
	// RatePerSecond 每秒最多发出的探测数
	RatePerSecond float64 `json:"rate_per_second"`

	// Burst 令牌桶突发容量
	Burst int `json:"burst"`

	// QueueSize 待发送探测队列长度，队列满时新探测被丢弃
	QueueSize int `json:"queue_size"`

	// MaxOutstanding 记录的未完成探测上限（nonce → 联系人）
	MaxOutstanding int `json:"max_outstanding"`

	// SendTimeout 单次发送的超时
	SendTimeout Duration `json:"send_timeout"`
}

// DefaultProbeConfig 返回默认探测配置
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		RatePerSecond:  20,
		Burst:          10,
		QueueSize:      256,
		MaxOutstanding: 1024,
		SendTimeout:    Duration(5 * time.Second),
	}
}

// Validate 验证探测配置
func (c ProbeConfig) Validate() error {
	if c.RatePerSecond <= 0 || c.Burst <= 0 {
		return errors.New("probe: rate_per_second and burst must be positive")
	}
	if c.QueueSize <= 0 {
		return errors.New("probe: queue_size must be positive")
	}
	if c.MaxOutstanding <= 0 {
		return errors.New("probe: max_outstanding must be positive")
	}
	if c.SendTimeout <= 0 {
		return errors.New("probe: send_timeout must be positive")
	}
	return nil
}
