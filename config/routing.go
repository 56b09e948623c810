package config

import (
	"errors"
	"time"
)

// RoutingConfig 路由表配置
type RoutingConfig struct {
	// BucketSize 每个叶子桶的容量 K
	BucketSize int `json:"bucket_size"`

	// MinVersion 可接纳联系人的最低协议版本
	MinVersion uint8 `json:"min_version"`

	// ReplyWindow 发出探测后等待回复的时间（快速老化窗口）
	ReplyWindow Duration `json:"reply_window"`

	// IdleInterval 路由表为空时的轮询间隔
	IdleInterval Duration `json:"idle_interval"`

	// SweepInterval 两次维护扫描之间的间隔
	SweepInterval Duration `json:"sweep_interval"`

	// MergeInterval 叶子合并的最小间隔
	MergeInterval Duration `json:"merge_interval"`

	// Persist 是否在启动/停止时加载/保存路由表快照
	Persist bool `json:"persist"`
}

// DefaultRoutingConfig 返回默认路由表配置
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		BucketSize:    10,
		MinVersion:    7,
		ReplyWindow:   Duration(2 * time.Minute),
		IdleInterval:  Duration(1 * time.Second),
		SweepInterval: Duration(60 * time.Second),
		MergeInterval: Duration(45 * time.Minute),
		Persist:       true,
	}
}

// Validate 验证路由表配置
func (c RoutingConfig) Validate() error {
	if c.BucketSize <= 0 {
		return errors.New("routing: bucket_size must be positive")
	}
	if c.ReplyWindow <= 0 {
		return errors.New("routing: reply_window must be positive")
	}
	if c.IdleInterval <= 0 || c.SweepInterval <= 0 {
		return errors.New("routing: idle_interval and sweep_interval must be positive")
	}
	if c.MergeInterval <= 0 {
		return errors.New("routing: merge_interval must be positive")
	}
	return nil
}
