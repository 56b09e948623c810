package kv

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
	"github.com/dep2p/go-kadtable/internal/core/storage/engine/badger"
)

// testEngine 创建测试用引擎
// 使用 t.TempDir() 创建临时目录，测试结束后自动清理
func testEngine(t *testing.T) engine.InternalEngine {
	t.Helper()

	eng, err := badger.New(engine.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, eng.Close())
	})
	return eng
}

// ============= 基础操作测试 =============

func TestStore_PutGet(t *testing.T) {
	store := New(testEngine(t), []byte("r/"))

	require.NoError(t, store.Put([]byte("key"), []byte("value")))

	got, err := store.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	ok, err := store.Has([]byte("key"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete([]byte("key")))
	_, err = store.Get([]byte("key"))
	assert.True(t, engine.IsNotFound(err))
}

func TestStore_PrefixIsolation(t *testing.T) {
	eng := testEngine(t)
	a := New(eng, []byte("a/"))
	b := New(eng, []byte("b/"))

	require.NoError(t, a.Put([]byte("k"), []byte("from-a")))
	require.NoError(t, b.Put([]byte("k"), []byte("from-b")))

	got, err := a.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("from-a"), got)

	// 底层键带有前缀
	raw, err := eng.Get([]byte("b/k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("from-b"), raw)
}

func TestStore_Uint64(t *testing.T) {
	store := New(testEngine(t), []byte("m/"))

	require.NoError(t, store.PutUint64([]byte("ts"), 1234567890))
	v, err := store.GetUint64([]byte("ts"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567890), v)

	require.NoError(t, store.Put([]byte("bad"), []byte{1, 2, 3}))
	_, err = store.GetUint64([]byte("bad"))
	assert.ErrorIs(t, err, engine.ErrCorrupted)
}

// ============= 前缀迭代测试 =============

func TestStore_PrefixScan(t *testing.T) {
	store := New(testEngine(t), []byte("r/"))

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Put([]byte(fmt.Sprintf("c/%02d", i)), []byte{byte(i)}))
	}
	require.NoError(t, store.Put([]byte("m/ts"), []byte("x")))

	var keys []string
	err := store.PrefixScan([]byte("c/"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c/00", "c/01", "c/02", "c/03", "c/04"}, keys)

	// 提前终止
	n := 0
	err = store.PrefixScan([]byte("c/"), func(_, _ []byte) bool {
		n++
		return n < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := store.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestStore_DeletePrefix(t *testing.T) {
	store := New(testEngine(t), []byte("r/"))

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Put([]byte(fmt.Sprintf("c/%02d", i)), []byte("v")))
	}
	require.NoError(t, store.Put([]byte("m/ts"), []byte("x")))

	require.NoError(t, store.DeletePrefix([]byte("c/")))

	keys, err := store.Keys(nil)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, []byte("m/ts"), keys[0])

	// 空前缀集合删除不报错
	assert.NoError(t, store.DeletePrefix([]byte("c/")))
}

func TestStore_SubStore(t *testing.T) {
	eng := testEngine(t)
	root := New(eng, []byte("r/"))
	sub := root.SubStore([]byte("c/"))

	assert.Equal(t, []byte("r/c/"), sub.Prefix())
	assert.Equal(t, []byte("r/"), root.Prefix())

	require.NoError(t, sub.Put([]byte("01"), []byte("v")))

	got, err := root.Get([]byte("c/01"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

// ============= 批量操作测试 =============

func TestBatch_Prefixed(t *testing.T) {
	store := New(testEngine(t), []byte("r/"))
	require.NoError(t, store.Put([]byte("old"), []byte("x")))

	batch := store.NewBatch()
	defer batch.Close()

	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	batch.Delete([]byte("old"))
	assert.Equal(t, 3, batch.Size())
	require.NoError(t, batch.Write())

	keys, err := store.Keys(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, keys)
	require.NoError(t, store.Sync())
}
