// Package storage 提供路由表快照使用的持久化存储
//
// Storage 模块基于 BadgerDB 实现：
//
//	┌─────────────────────────────────────┐
//	│  routing/kad (快照 Save / Load)      │
//	└─────────────────────────────────────┘
//	                 │
//	                 ▼
//	┌─────────────────────────────────────┐
//	│  kv.Store     带前缀隔离的 KV 抽象    │
//	├─────────────────────────────────────┤
//	│  engine/badger  BadgerDB 实现        │
//	└─────────────────────────────────────┘
//
// # 键空间设计
//
//	前缀     | 说明
//	---------|------------------------
//	r/c/     | 路由表联系人记录（按 ID 十六进制）
//	r/m/     | 快照元数据（保存时间等）
//
// # 使用示例
//
//	app := fx.New(
//	    storage.Module(),
//	    kad.Module(),
//	)
//
// 手动创建：
//
//	cfg := storage.DefaultConfig()
//	cfg.Path = "/data/kadtable.db"
//	eng, err := storage.NewEngine(cfg)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//	store := storage.NewKVStore(eng, []byte("r/"))
//
// 所有公开的类型和方法都是线程安全的。
package storage
