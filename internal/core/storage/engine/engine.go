// Package engine 定义存储引擎的内部接口
//
// 本包扩展 pkg/interfaces 中的公共 Engine 接口，
// 提供批量写入与前缀迭代。路由表快照只需要这两种能力，
// 因此不暴露事务。
//
// 所有接口实现必须保证线程安全。批量操作在提交前
// 是独立的，不影响其他并发操作。
package engine

import (
	"github.com/dep2p/go-kadtable/pkg/interfaces"
)

// InternalEngine 内部扩展接口
type InternalEngine interface {
	interfaces.Engine

	// NewBatch 创建新的批量写入对象
	NewBatch() Batch

	// NewPrefixIterator 创建前缀迭代器，调用者负责 Close
	NewPrefixIterator(prefix []byte) Iterator

	// Start 启动存储引擎的后台任务（GC 等）
	Start() error

	// Sync 同步数据到磁盘
	Sync() error
}

// Batch 批量写入接口
//
// 将多个写入操作合并为一次原子写入。
// Batch 不是线程安全的，不应在多个 goroutine 中并发使用。
type Batch interface {
	// Put 添加一个写入操作
	Put(key, value []byte)

	// Delete 添加一个删除操作
	Delete(key []byte)

	// Write 原子地写入全部操作，写入后批量对象被重置
	Write() error

	// Size 返回待写入的操作数量
	Size() int

	// Close 放弃未写入的操作并释放资源
	Close() error
}

// Iterator 迭代器接口
//
// 使用模式:
//
//	iter := eng.NewPrefixIterator(prefix)
//	defer iter.Close()
//
//	for iter.First(); iter.Valid(); iter.Next() {
//	    key, value := iter.Key(), iter.Value()
//	}
//
//	if err := iter.Error(); err != nil {
//	    return err
//	}
type Iterator interface {
	// First 移动到第一个键值对
	First() bool

	// Next 移动到下一个键值对
	Next() bool

	// Valid 检查迭代器是否指向有效位置
	Valid() bool

	// Key 返回当前键的副本
	Key() []byte

	// Value 返回当前值的副本
	Value() []byte

	// Close 关闭迭代器
	Close()

	// Error 返回迭代过程中的错误
	Error() error
}
