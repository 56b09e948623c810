package kad

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
	"github.com/dep2p/go-kadtable/internal/core/storage/engine/badger"
	"github.com/dep2p/go-kadtable/internal/core/storage/kv"
	"github.com/dep2p/go-kadtable/pkg/types"
)

// newTestStore 创建内存模式的快照存储
func newTestStore(t *testing.T) *kv.Store {
	t.Helper()

	cfg := engine.DefaultConfig("")
	cfg.InMemory = true
	eng, err := badger.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	return kv.New(eng, snapshotPrefix)
}

// TestContactRecord_Encoding 记录编码与解析
func TestContactRecord_Encoding(t *testing.T) {
	info := contactInfo(idAt(1, 2))
	info.UDPKey = types.UDPKey{Key: 0xdeadbeef, IP: 0x0a000002}
	info.Verified = true

	got, err := decodeContact(encodeContact(info))
	require.NoError(t, err)
	assert.Equal(t, info, got)

	// 未知字段被跳过
	b := encodeContact(info)
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future"))
	got, err = decodeContact(b)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	t.Log("✅ 记录编码正确")
}

// TestContactRecord_Corrupt 损坏记录返回错误
func TestContactRecord_Corrupt(t *testing.T) {
	_, err := decodeContact(nil)
	assert.ErrorIs(t, err, ErrCorruptRecord, "缺少 ID")

	b := encodeContact(contactInfo(idAt(1, 2)))
	_, err = decodeContact(b[:len(b)-1])
	assert.ErrorIs(t, err, ErrCorruptRecord, "截断")

	short := protowire.AppendTag(nil, fieldID, protowire.BytesType)
	short = protowire.AppendBytes(short, []byte{1, 2, 3})
	_, err = decodeContact(short)
	assert.ErrorIs(t, err, ErrCorruptRecord, "ID 长度错误")

	t.Log("✅ 损坏记录检测正确")
}

// TestSnapshot_SaveLoad 保存后在新路由表中恢复
func TestSnapshot_SaveLoad(t *testing.T) {
	store := newTestStore(t)

	table, _, _ := newTestTable(t, WithStore(store))
	fillTwoLeaves(t, table)
	require.NoError(t, table.SaveSnapshot())

	n, err := store.Count(contactKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	savedAt, err := store.GetUint64(savedAtKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), savedAt, "模拟时钟从 Unix 纪元开始")

	restored, _, _ := newTestTable(t, WithStore(store))
	loaded, err := restored.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 11, loaded)
	assert.Equal(t, 11, restored.NumContacts())
	assert.Equal(t, 2, restored.NumLeaves())

	// 删除后再保存，快照随之缩小
	require.True(t, table.Remove(idAt(1<<63|1, 0)))
	require.NoError(t, table.SaveSnapshot())
	n, err = store.Count(contactKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	t.Log("✅ 快照保存与恢复正确")
}

// TestSnapshot_SkipsCorruptAndInadmissible 损坏记录被删除，不可接纳的记录被跳过
func TestSnapshot_SkipsCorruptAndInadmissible(t *testing.T) {
	store := newTestStore(t)

	good := contactInfo(idAt(1, 0))
	old := contactInfo(idAt(2, 0))
	old.Version = 3
	self := contactInfo(testLocalID)

	require.NoError(t, store.Put(contactKey(good.ID), encodeContact(good)))
	require.NoError(t, store.Put(contactKey(old.ID), encodeContact(old)))
	require.NoError(t, store.Put(contactKey(self.ID), encodeContact(self)))
	require.NoError(t, store.Put([]byte("c/garbage"), []byte{0xff}))

	table, _, _ := newTestTable(t, WithStore(store))
	loaded, err := table.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 1, table.NumContacts())

	ok, err := store.Has([]byte("c/garbage"))
	require.NoError(t, err)
	assert.False(t, ok, "损坏记录已删除")

	t.Log("✅ 快照过滤正确")
}

// TestSnapshot_NoStore 未配置存储
func TestSnapshot_NoStore(t *testing.T) {
	table, _, _ := newTestTable(t)

	assert.ErrorIs(t, table.SaveSnapshot(), ErrNoStore)
	_, err := table.LoadSnapshot()
	assert.ErrorIs(t, err, ErrNoStore)

	t.Log("✅ 无存储时返回错误")
}

// TestSnapshot_Lifecycle 启动加载、停止保存
func TestSnapshot_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	table, _, _ := newTestTable(t, WithStore(store))
	require.NoError(t, table.Start(ctx))
	mustAdd(t, table, idAt(1, 0))
	mustAdd(t, table, idAt(2, 0))
	require.NoError(t, table.Stop(ctx))

	restored, _, _ := newTestTable(t, WithStore(store))
	require.NoError(t, restored.Start(ctx))
	defer restored.Stop(ctx)
	assert.Equal(t, 2, restored.NumContacts())

	t.Log("✅ 生命周期快照正确")
}
