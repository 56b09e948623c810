package kad

import (
	"fmt"
	"time"

	"github.com/dep2p/go-kadtable/config"
)

// Config 路由表配置
type Config struct {
	// BucketSize 每个叶子桶的容量 K
	BucketSize int

	// MinVersion 可接纳联系人的最低协议版本
	MinVersion uint8

	// ReplyWindow 探测后的快速老化窗口
	ReplyWindow time.Duration

	// IdleInterval 路由表为空时的轮询间隔
	IdleInterval time.Duration

	// SweepInterval 维护扫描间隔
	SweepInterval time.Duration

	// MergeInterval 叶子合并的最小间隔
	MergeInterval time.Duration

	// Persist 启动时加载、停止时保存快照
	Persist bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return fromRouting(config.DefaultRoutingConfig())
}

// ConfigFromUnified 从统一配置创建路由表配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return fromRouting(cfg.Routing)
}

func fromRouting(rc config.RoutingConfig) Config {
	return Config{
		BucketSize:    rc.BucketSize,
		MinVersion:    rc.MinVersion,
		ReplyWindow:   rc.ReplyWindow.Duration(),
		IdleInterval:  rc.IdleInterval.Duration(),
		SweepInterval: rc.SweepInterval.Duration(),
		MergeInterval: rc.MergeInterval.Duration(),
		Persist:       rc.Persist,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	switch {
	case c.BucketSize <= 0:
		return fmt.Errorf("%w: bucket size %d", ErrInvalidConfig, c.BucketSize)
	case c.ReplyWindow <= 0:
		return fmt.Errorf("%w: reply window %s", ErrInvalidConfig, c.ReplyWindow)
	case c.IdleInterval <= 0 || c.SweepInterval <= 0:
		return fmt.Errorf("%w: maintenance intervals must be positive", ErrInvalidConfig)
	case c.MergeInterval <= 0:
		return fmt.Errorf("%w: merge interval %s", ErrInvalidConfig, c.MergeInterval)
	}
	return nil
}
