package kad

import (
	"math/rand"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadtable/pkg/types"
	"github.com/dep2p/go-kadtable/tests/mocks"
)

// testLocalID 测试用本地 ID
var testLocalID = types.IDFromUint64s(0x0123456789abcdef, 0xfedcba9876543210)

// idAt 返回与本地 ID 距离为 (hi, lo) 的 ID
func idAt(hi, lo uint64) types.ID {
	return testLocalID.Xor(types.IDFromUint64s(hi, lo))
}

// contactInfo 构造一个可被接纳的联系人描述
func contactInfo(id types.ID) types.ContactInfo {
	return types.ContactInfo{
		ID:      id,
		IP:      0x0a000001,
		UDPPort: 4672,
		TCPPort: 4662,
		Version: 8,
	}
}

// newTestTable 创建使用模拟时钟与固定随机源的路由表
func newTestTable(t *testing.T, opts ...Option) (*RoutingTable, *mocks.MockProber, *clock.Mock) {
	t.Helper()

	prober := mocks.NewMockProber()
	clk := clock.NewMock()
	base := []Option{
		WithClock(clk),
		WithRand(rand.New(rand.NewSource(1))),
	}
	table, err := New(testLocalID, prober, append(base, opts...)...)
	require.NoError(t, err)
	return table, prober, clk
}

// withBucketSize 返回只修改 K 的配置选项
func withBucketSize(k int) Option {
	cfg := DefaultConfig()
	cfg.BucketSize = k
	return WithConfig(cfg)
}

// mustAdd 添加联系人并要求成功
func mustAdd(t *testing.T, table *RoutingTable, id types.ID) {
	t.Helper()
	require.True(t, table.Add(contactInfo(id)), "add %s", id.ShortString())
}
