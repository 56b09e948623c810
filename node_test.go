package kadtable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadtable/pkg/types"
	"github.com/dep2p/go-kadtable/tests/mocks"
)

var testLocalID = types.IDFromUint64s(0x0123456789abcdef, 0xfedcba9876543210)

func testContact(i uint64) types.ContactInfo {
	return types.ContactInfo{
		ID:      types.IDFromUint64s(0x8000000000000000|i, i),
		IP:      0x0a000001 + uint32(i),
		UDPPort: 4672,
		TCPPort: 4662,
		Version: 8,
	}
}

// TestNew_InvalidOption 选项错误直接返回
func TestNew_InvalidOption(t *testing.T) {
	_, err := New(WithBucketSize(0))
	assert.Error(t, err)

	_, err = New(WithLocalID(types.ZeroID))
	assert.Error(t, err)

	_, err = New(WithConfig(nil))
	assert.Error(t, err)

	t.Log("✅ 非法选项被拒绝")
}

// TestNode_Lifecycle 测试启动、停止以及重启后恢复快照
func TestNode_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	node, err := New(WithDataDir(dir), WithLocalID(testLocalID))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, node.State())
	assert.ErrorIs(t, node.Stop(ctx), ErrNotStarted)

	require.NoError(t, node.Start(ctx))
	assert.Equal(t, StateRunning, node.State())
	assert.ErrorIs(t, node.Start(ctx), ErrAlreadyStarted)
	assert.Equal(t, testLocalID, node.LocalID())

	for i := uint64(1); i <= 5; i++ {
		require.True(t, node.Table().Add(testContact(i)))
	}

	require.NoError(t, node.Stop(ctx))
	assert.Equal(t, StateStopped, node.State())
	assert.ErrorIs(t, node.Start(ctx), ErrNodeClosed)
	assert.NoError(t, node.Close())

	restored, err := New(WithDataDir(dir), WithLocalID(testLocalID))
	require.NoError(t, err)
	require.NoError(t, restored.Start(ctx))
	defer restored.Close()

	assert.Equal(t, 5, restored.Table().NumContacts())
	_, ok := restored.Table().Contact(testContact(3).ID)
	assert.True(t, ok)

	t.Log("✅ 节点生命周期与快照恢复正确")
}

// TestNode_GeneratedIDIsStable 未指定 ID 时 ID 文件保证重启后 ID 不变
func TestNode_GeneratedIDIsStable(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := New(WithDataDir(dir))
	require.NoError(t, err)
	require.NoError(t, first.Start(ctx))
	id := first.LocalID()
	require.NoError(t, first.Close())

	second, err := New(WithDataDir(dir))
	require.NoError(t, err)
	require.NoError(t, second.Start(ctx))
	defer second.Close()

	assert.Equal(t, id, second.LocalID())

	t.Log("✅ 生成的本地 ID 持久化")
}

// TestNode_ProbeReply 维护扫描发出探测，回复把联系人恢复为正常状态
func TestNode_ProbeReply(t *testing.T) {
	sender := mocks.NewMockProbeSender()
	ctx := context.Background()

	node, err := New(
		WithInMemory(),
		WithLocalID(testLocalID),
		WithSender(sender),
		WithProbeRate(1000),
	)
	require.NoError(t, err)
	require.NoError(t, node.Start(ctx))
	defer node.Close()

	info := testContact(1)
	require.True(t, node.Table().Add(info))

	node.Table().MaintainTable()

	var call mocks.SendHelloCall
	select {
	case call = <-sender.Sent:
	case <-time.After(5 * time.Second):
		t.Fatal("探测未发出")
	}
	assert.Equal(t, info.ID, call.Info.ID)
	assert.Equal(t, info.Addr(), call.Addr)

	got, ok := node.Table().Contact(info.ID)
	require.True(t, ok)
	assert.Equal(t, types.StatePromptedForDeletion, got.State)

	require.Eventually(t, func() bool { return node.Prober().Pending() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, node.Prober().HandleReply(call.Nonce))

	got, ok = node.Table().Contact(info.ID)
	require.True(t, ok)
	assert.Equal(t, types.StateNormal, got.State)
	assert.True(t, got.Expires.IsZero())

	require.Eventually(t, func() bool { return node.Summary().ProbesSent == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, node.Summary().Contacts)

	t.Log("✅ 探测与回复闭环正确")
}

// TestVersionInfo 测试版本字符串
func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)

	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = "" }()
	assert.Contains(t, VersionInfo(), "(01234567)")

	t.Log("✅ 版本信息正确")
}
