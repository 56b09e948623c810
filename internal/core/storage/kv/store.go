// Package kv 提供带前缀隔离的 KV 存储抽象
//
// Store 在存储引擎之上为所有键自动添加前缀，
// 不同使用方通过不同前缀共享同一个 BadgerDB 实例。
//
// # 使用示例
//
//	store := kv.New(eng, []byte("r/"))
//	contacts := store.SubStore([]byte("c/"))
//
//	err := contacts.PrefixScan(nil, func(key, value []byte) bool {
//	    // key 已去除 "r/c/" 前缀
//	    return true
//	})
package kv

import (
	"encoding/binary"

	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
)

// Store 带前缀隔离的 KV 存储
type Store struct {
	engine engine.InternalEngine
	prefix []byte
}

// New 创建新的 KVStore
//
// 参数:
//   - eng: 底层存储引擎
//   - prefix: 键前缀（所有操作会自动添加此前缀）
func New(eng engine.InternalEngine, prefix []byte) *Store {
	return &Store{
		engine: eng,
		prefix: append([]byte(nil), prefix...),
	}
}

// prefixKey 为键添加前缀
func (s *Store) prefixKey(key []byte) []byte {
	prefixed := make([]byte, len(s.prefix)+len(key))
	copy(prefixed, s.prefix)
	copy(prefixed[len(s.prefix):], key)
	return prefixed
}

// stripPrefix 从键中移除前缀
func (s *Store) stripPrefix(key []byte) []byte {
	if len(key) < len(s.prefix) {
		return key
	}
	return key[len(s.prefix):]
}

// ============= 基础操作 =============

// Get 获取指定键的值
func (s *Store) Get(key []byte) ([]byte, error) {
	return s.engine.Get(s.prefixKey(key))
}

// Put 设置键值对
func (s *Store) Put(key, value []byte) error {
	return s.engine.Put(s.prefixKey(key), value)
}

// Delete 删除指定键
func (s *Store) Delete(key []byte) error {
	return s.engine.Delete(s.prefixKey(key))
}

// Has 检查键是否存在
func (s *Store) Has(key []byte) (bool, error) {
	return s.engine.Has(s.prefixKey(key))
}

// GetUint64 获取大端编码的 uint64 值
func (s *Store) GetUint64(key []byte) (uint64, error) {
	data, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, engine.ErrCorrupted
	}
	return binary.BigEndian.Uint64(data), nil
}

// PutUint64 以大端编码存储 uint64 值
func (s *Store) PutUint64(key []byte, value uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return s.Put(key, buf[:])
}

// ============= 前缀迭代 =============

// PrefixScan 扫描指定前缀的所有键值对
//
// 回调函数返回 false 时停止扫描。
// 返回的 key 已去除 Store 的前缀，但保留 subPrefix。
func (s *Store) PrefixScan(subPrefix []byte, fn func(key, value []byte) bool) error {
	iter := s.engine.NewPrefixIterator(s.prefixKey(subPrefix))
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if !fn(s.stripPrefix(iter.Key()), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// Keys 返回指定前缀的所有键
func (s *Store) Keys(subPrefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := s.PrefixScan(subPrefix, func(key, _ []byte) bool {
		keys = append(keys, append([]byte(nil), key...))
		return true
	})
	return keys, err
}

// Count 统计指定前缀的键数量
func (s *Store) Count(subPrefix []byte) (int, error) {
	count := 0
	err := s.PrefixScan(subPrefix, func(_, _ []byte) bool {
		count++
		return true
	})
	return count, err
}

// DeletePrefix 删除指定前缀的所有键
func (s *Store) DeletePrefix(subPrefix []byte) error {
	keys, err := s.Keys(subPrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	batch := s.NewBatch()
	defer batch.Close()
	for _, key := range keys {
		batch.Delete(key)
	}
	return batch.Write()
}

// ============= 批量操作 =============

// Batch 带前缀的批量操作
type Batch struct {
	store *Store
	batch engine.Batch
}

// NewBatch 创建新的批量操作，调用者负责 Close
func (s *Store) NewBatch() *Batch {
	return &Batch{
		store: s,
		batch: s.engine.NewBatch(),
	}
}

// Put 添加写入操作
func (b *Batch) Put(key, value []byte) {
	b.batch.Put(b.store.prefixKey(key), value)
}

// Delete 添加删除操作
func (b *Batch) Delete(key []byte) {
	b.batch.Delete(b.store.prefixKey(key))
}

// Write 执行批量操作
func (b *Batch) Write() error {
	return b.batch.Write()
}

// Size 返回操作数量
func (b *Batch) Size() int {
	return b.batch.Size()
}

// Close 释放批量对象
func (b *Batch) Close() error {
	return b.batch.Close()
}

// ============= 辅助方法 =============

// Prefix 返回当前 Store 的前缀
func (s *Store) Prefix() []byte {
	return s.prefix
}

// SubStore 创建子存储（在当前前缀基础上添加子前缀）
func (s *Store) SubStore(subPrefix []byte) *Store {
	return &Store{
		engine: s.engine,
		prefix: s.prefixKey(subPrefix),
	}
}

// Sync 同步底层引擎
func (s *Store) Sync() error {
	return s.engine.Sync()
}
