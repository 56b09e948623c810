// Package badger 提供基于 BadgerDB 的存储引擎实现
//
// # 使用示例
//
//	cfg := engine.DefaultConfig("/data/kadtable.db")
//	db, err := badger.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Put([]byte("key"), []byte("value")); err != nil {
//	    return err
//	}
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
	"github.com/dep2p/go-kadtable/pkg/lib/log"
)

var logger = log.Logger("storage/badger")

// Engine BadgerDB 存储引擎
type Engine struct {
	db     *badger.DB
	config *engine.Config
	closed atomic.Bool

	startOnce sync.Once

	// 后台任务
	gcCtx    context.Context
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
}

// New 创建新的 BadgerDB 存储引擎
func New(cfg *engine.Config) (*Engine, error) {
	if cfg == nil {
		return nil, engine.ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}

	db, err := badger.Open(buildBadgerOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		db:       db,
		config:   cfg,
		gcCtx:    ctx,
		gcCancel: cancel,
	}, nil
}

// buildBadgerOptions 根据配置构建 BadgerDB 选项
func buildBadgerOptions(cfg *engine.Config) badger.Options {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}

	return opts.
		WithSyncWrites(cfg.SyncWrites).
		WithMemTableSize(cfg.MemTableSize).
		WithValueLogFileSize(cfg.ValueLogFileSize).
		WithBlockCacheSize(cfg.BlockCacheSize).
		WithLogger(badgerLogger{})
}

// badgerLogger 将 badger 的 printf 风格日志转接到 slog
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf(format, args...))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn(fmt.Sprintf(format, args...))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...))
}

// Start 启动存储引擎（值日志 GC）
func (e *Engine) Start() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if e.config.GCInterval <= 0 || e.config.InMemory {
		return nil
	}
	e.startOnce.Do(e.startGC)
	return nil
}

func (e *Engine) startGC() {
	e.gcWg.Add(1)
	go func() {
		defer e.gcWg.Done()

		ticker := time.NewTicker(e.config.GCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-e.gcCtx.Done():
				return
			case <-ticker.C:
				e.runGC()
			}
		}
	}()
}

// runGC 执行 GC 直到没有可回收的空间
func (e *Engine) runGC() {
	for !e.closed.Load() {
		if err := e.db.RunValueLogGC(e.config.GCDiscardRatio); err != nil {
			return
		}
	}
}

// Get 获取指定键的值
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, engine.ErrClosed
	}
	if len(key) == 0 {
		return nil, engine.ErrEmptyKey
	}

	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, convertError(err)
	}
	return value, nil
}

// Put 设置键值对
func (e *Engine) Put(key, value []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return convertError(e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	}))
}

// Delete 删除指定键
func (e *Engine) Delete(key []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return convertError(e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	}))
}

// Has 检查键是否存在
func (e *Engine) Has(key []byte) (bool, error) {
	_, err := e.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, engine.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Close 关闭存储引擎
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.gcCancel()
	e.gcWg.Wait()
	return e.db.Close()
}

// NewBatch 创建新的批量写入对象
func (e *Engine) NewBatch() engine.Batch {
	return &WriteBatch{
		db:    e,
		batch: e.db.NewWriteBatch(),
	}
}

// NewPrefixIterator 创建前缀迭代器
func (e *Engine) NewPrefixIterator(prefix []byte) engine.Iterator {
	txn := e.db.NewTransaction(false)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchSize = 100

	return &Iterator{
		txn:    txn,
		iter:   txn.NewIterator(opts),
		prefix: prefix,
	}
}

// Sync 同步数据到磁盘
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	return e.db.Sync()
}

// convertError 转换 BadgerDB 错误到引擎错误
func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return engine.ErrNotFound
	case errors.Is(err, badger.ErrEmptyKey):
		return engine.ErrEmptyKey
	case errors.Is(err, badger.ErrDBClosed):
		return engine.ErrClosed
	default:
		return err
	}
}

var _ engine.InternalEngine = (*Engine)(nil)
