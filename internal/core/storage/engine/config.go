package engine

import (
	"os"
	"path/filepath"
	"time"
)

// Config 存储引擎配置
//
// 测试代码应使用 t.TempDir() 创建临时目录，确保测试与生产一致。
type Config struct {
	// Path 数据目录路径（InMemory 为 false 时必需）
	Path string

	// InMemory 仅在内存中保存数据
	InMemory bool

	// SyncWrites 是否同步写入
	SyncWrites bool

	// GCInterval 值日志垃圾回收间隔，0 表示禁用
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例
	GCDiscardRatio float64

	// MemTableSize 内存表大小（字节）
	MemTableSize int64

	// ValueLogFileSize 值日志文件大小（字节）
	ValueLogFileSize int64

	// BlockCacheSize 块缓存大小（字节）
	BlockCacheSize int64
}

// DefaultConfig 返回默认配置
//
// 路由表快照只有几千条小记录，默认值比通用 KV 场景小得多。
func DefaultConfig(path string) *Config {
	return &Config{
		Path:             path,
		GCInterval:       10 * time.Minute,
		GCDiscardRatio:   0.5,
		MemTableSize:     8 << 20,  // 8MB
		ValueLogFileSize: 64 << 20, // 64MB
		BlockCacheSize:   16 << 20, // 16MB
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Path == "" && !c.InMemory {
		return ErrInvalidConfig
	}
	if c.MemTableSize < 1<<20 || c.ValueLogFileSize < 1<<20 {
		return ErrInvalidConfig
	}
	if c.GCInterval > 0 && (c.GCDiscardRatio <= 0 || c.GCDiscardRatio >= 1) {
		return ErrInvalidConfig
	}
	return nil
}

// EnsureDir 确保数据目录存在
func (c *Config) EnsureDir() error {
	if c.InMemory {
		return nil
	}
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath
	return os.MkdirAll(c.Path, 0o755)
}
