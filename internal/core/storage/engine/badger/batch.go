package badger

import (
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
)

// WriteBatch BadgerDB 批量写入实现
type WriteBatch struct {
	db     *Engine
	batch  *badger.WriteBatch
	count  int
	closed atomic.Bool
	err    error
}

// Put 添加一个写入操作
func (b *WriteBatch) Put(key, value []byte) {
	if b.closed.Load() || len(key) == 0 || b.err != nil {
		return
	}
	b.err = b.batch.Set(key, value)
	b.count++
}

// Delete 添加一个删除操作
func (b *WriteBatch) Delete(key []byte) {
	if b.closed.Load() || len(key) == 0 || b.err != nil {
		return
	}
	b.err = b.batch.Delete(key)
	b.count++
}

// Write 执行批量写入
func (b *WriteBatch) Write() error {
	if b.closed.Load() {
		return engine.ErrBatchClosed
	}
	if b.db.closed.Load() {
		return engine.ErrClosed
	}
	if b.err != nil {
		err := b.err
		b.reset()
		return convertError(err)
	}
	if err := b.batch.Flush(); err != nil {
		b.batch = b.db.db.NewWriteBatch()
		b.count = 0
		return convertError(err)
	}
	b.batch = b.db.db.NewWriteBatch()
	b.count = 0
	return nil
}

// reset 丢弃未写入的操作
func (b *WriteBatch) reset() {
	b.batch.Cancel()
	b.batch = b.db.db.NewWriteBatch()
	b.count = 0
	b.err = nil
}

// Size 返回批量中的操作数量
func (b *WriteBatch) Size() int {
	return b.count
}

// Close 关闭批量对象
func (b *WriteBatch) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.batch.Cancel()
	return nil
}

var _ engine.Batch = (*WriteBatch)(nil)
