package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 非正的时间间隔 -> 使用默认值
//   - 非正的桶容量 -> 使用默认值
//   - 未完成探测上限小于队列长度 -> 提升到队列长度
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	// 路由表：时间间隔与桶容量
	defRouting := DefaultRoutingConfig()
	if c.Routing.BucketSize <= 0 {
		c.Routing.BucketSize = defRouting.BucketSize
	}
	if c.Routing.ReplyWindow <= 0 {
		c.Routing.ReplyWindow = defRouting.ReplyWindow
	}
	if c.Routing.IdleInterval <= 0 {
		c.Routing.IdleInterval = defRouting.IdleInterval
	}
	if c.Routing.SweepInterval <= 0 {
		c.Routing.SweepInterval = defRouting.SweepInterval
	}
	if c.Routing.MergeInterval <= 0 {
		c.Routing.MergeInterval = defRouting.MergeInterval
	}

	// 探测：出队的每个探测都要能登记 nonce
	if c.Probe.MaxOutstanding < c.Probe.QueueSize {
		c.Probe.MaxOutstanding = c.Probe.QueueSize
	}
	if c.Probe.SendTimeout <= 0 {
		c.Probe.SendTimeout = DefaultProbeConfig().SendTimeout
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}

// ValidateCompatibility 验证配置之间的兼容性
//
//   - 持久化快照需要稳定的本地 ID（LocalID 或 IDFile）
//   - 持久化快照与内存存储互斥
//   - 合并间隔不能短于扫描间隔
func ValidateCompatibility(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Routing.Persist {
		if c.Identity.LocalID == "" && c.Identity.IDFile == "" {
			return errors.New("routing persist enabled but local id is not stable (set local_id or id_file)")
		}
		if c.Storage.InMemory {
			return errors.New("routing persist enabled but storage is in-memory")
		}
	}

	if c.Routing.MergeInterval < c.Routing.SweepInterval {
		return fmt.Errorf("merge interval (%s) shorter than sweep interval (%s)",
			c.Routing.MergeInterval, c.Routing.SweepInterval)
	}
	return nil
}
