package storage

import (
	"time"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
)

// Config Storage 模块配置
//
// 测试代码应使用 t.TempDir() 或 InMemory 模式。
type Config struct {
	// Path BadgerDB 数据库目录
	Path string

	// InMemory 仅在内存中保存数据（不落盘）
	InMemory bool

	// SyncWrites 是否同步写入
	SyncWrites bool

	// GCInterval 值日志垃圾回收间隔
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	defaults := config.DefaultStorageConfig()
	return Config{
		Path:           defaults.DBPath(),
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// ConfigFromUnified 从统一配置创建 Storage 配置
func ConfigFromUnified(cfg *config.Config) Config {
	storageCfg := DefaultConfig()
	if cfg == nil {
		return storageCfg
	}

	storageCfg.InMemory = cfg.Storage.InMemory
	if cfg.Storage.DataDir != "" {
		storageCfg.Path = cfg.Storage.DBPath()
	}
	return storageCfg
}

// ToEngineConfig 转换为引擎配置
func (c *Config) ToEngineConfig() *engine.Config {
	engineCfg := engine.DefaultConfig(c.Path)
	engineCfg.InMemory = c.InMemory
	engineCfg.SyncWrites = c.SyncWrites
	engineCfg.GCInterval = c.GCInterval
	engineCfg.GCDiscardRatio = c.GCDiscardRatio
	return engineCfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Path == "" && !c.InMemory {
		return ErrInvalidConfig
	}
	if c.GCInterval > 0 && c.GCInterval < time.Minute {
		c.GCInterval = time.Minute
	}
	if c.GCDiscardRatio <= 0 || c.GCDiscardRatio >= 1 {
		c.GCDiscardRatio = 0.5
	}
	return nil
}
