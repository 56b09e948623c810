package config

import (
	"fmt"
	"path/filepath"
)

// StorageConfig 存储配置
//
// 数据目录结构：
//
//	${DataDir}/
//	└── kadtable.db/        # BadgerDB 数据库（路由表快照）
type StorageConfig struct {
	// DataDir 数据目录路径
	// 默认值: "./data"
	DataDir string `json:"data_dir"`

	// InMemory 使用内存模式（不落盘），用于测试
	InMemory bool `json:"in_memory,omitempty"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir: "./data",
	}
}

// Validate 验证存储配置的有效性
func (c *StorageConfig) Validate() error {
	if c.DataDir == "" && !c.InMemory {
		return fmt.Errorf("storage: data_dir cannot be empty")
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库路径
func (c *StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "kadtable.db")
}
