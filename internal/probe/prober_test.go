package probe

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadtable/pkg/types"
	"github.com/dep2p/go-kadtable/tests/mocks"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RatePerSecond = 1000
	cfg.Burst = 100
	return cfg
}

func testInfo(n uint64) types.ContactInfo {
	return types.ContactInfo{
		ID:      types.IDFromUint64s(n, n),
		IP:      0x0a000001,
		UDPPort: 4672,
		Version: 8,
	}
}

// waitSent 等待发送方收到一次调用
func waitSent(t *testing.T, sender *mocks.MockProbeSender) mocks.SendHelloCall {
	t.Helper()
	select {
	case call := <-sender.Sent:
		return call
	case <-time.After(5 * time.Second):
		t.Fatal("等待发送超时")
		return mocks.SendHelloCall{}
	}
}

func startProber(t *testing.T, sender *mocks.MockProbeSender, opts ...Option) *Prober {
	t.Helper()
	p, err := New(sender, append([]Option{WithConfig(testConfig())}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { _ = p.Stop(context.Background()) })
	return p
}

// TestNew_Validation 构造参数校验
func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilSender)

	cfg := DefaultConfig()
	cfg.QueueSize = 0
	_, err = New(mocks.NewMockProbeSender(), WithConfig(cfg))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Log("✅ 构造校验正确")
}

// TestProber_SendAndReply 发送探测并处理回复
func TestProber_SendAndReply(t *testing.T) {
	sender := mocks.NewMockProbeSender()
	refresher := mocks.NewMockRefresher()
	p := startProber(t, sender, WithRefresher(refresher))

	info := testInfo(1)
	p.SendHello(info)

	call := waitSent(t, sender)
	assert.Equal(t, info.ID, call.Info.ID)
	assert.Equal(t, netip.MustParseAddrPort("10.0.0.1:4672"), call.Addr)
	assert.NotEmpty(t, call.Nonce)
	assert.Eventually(t, func() bool { return p.SentTotal() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, p.Pending())

	assert.True(t, p.HandleReply(call.Nonce))
	assert.Equal(t, []types.ID{info.ID}, refresher.Calls())
	assert.Zero(t, p.Pending())

	// 同一 nonce 只能使用一次
	assert.False(t, p.HandleReply(call.Nonce))
	assert.False(t, p.HandleReply("never-sent"))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.metrics.replies.WithLabelValues(outcomeUnknown)))

	t.Log("✅ 发送与回复正确")
}

// TestProber_NoncesAreUnique 每次探测使用新的 nonce
func TestProber_NoncesAreUnique(t *testing.T) {
	sender := mocks.NewMockProbeSender()
	p := startProber(t, sender)

	for i := uint64(1); i <= 5; i++ {
		p.SendHello(testInfo(i))
	}
	nonces := make(map[string]bool)
	for i := 0; i < 5; i++ {
		nonces[waitSent(t, sender).Nonce] = true
	}
	assert.Len(t, nonces, 5)

	t.Log("✅ nonce 唯一")
}

// TestProber_SendHelloNeverBlocks 队列满时丢弃而不阻塞
func TestProber_SendHelloNeverBlocks(t *testing.T) {
	cfg := testConfig()
	cfg.QueueSize = 2
	p, err := New(mocks.NewMockProbeSender(), WithConfig(cfg))
	require.NoError(t, err)

	// 未启动：没有消费者
	done := make(chan struct{})
	go func() {
		for i := uint64(1); i <= 10; i++ {
			p.SendHello(testInfo(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendHello 阻塞")
	}
	assert.Equal(t, 2, p.QueueLen())
	assert.Equal(t, 8.0, testutil.ToFloat64(p.metrics.dropped))

	t.Log("✅ SendHello 不阻塞")
}

// TestProber_SendErrorForgetsNonce 发送失败不保留 nonce
func TestProber_SendErrorForgetsNonce(t *testing.T) {
	sender := mocks.NewMockProbeSender()
	sender.SendHelloFunc = func(context.Context, netip.AddrPort, types.ContactInfo, string) error {
		return errors.New("network unreachable")
	}
	p := startProber(t, sender)

	p.SendHello(testInfo(1))
	call := waitSent(t, sender)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(p.metrics.sendErrors) == 1
	}, time.Second, time.Millisecond)
	assert.Zero(t, p.Pending())
	assert.False(t, p.HandleReply(call.Nonce))
	assert.Zero(t, p.SentTotal())

	t.Log("✅ 发送失败处理正确")
}

// TestProber_OutstandingBounded 未完成探测数有上限
func TestProber_OutstandingBounded(t *testing.T) {
	cfg := testConfig()
	cfg.MaxOutstanding = 3
	sender := mocks.NewMockProbeSender()
	p := startProber(t, sender, WithConfig(cfg))

	var first string
	for i := uint64(1); i <= 5; i++ {
		p.SendHello(testInfo(i))
		call := waitSent(t, sender)
		if i == 1 {
			first = call.Nonce
		}
	}
	assert.Eventually(t, func() bool { return p.SentTotal() == 5 }, time.Second, time.Millisecond)
	assert.Equal(t, 3, p.Pending())
	assert.False(t, p.HandleReply(first), "最旧的 nonce 已被淘汰")

	t.Log("✅ 未完成探测有上限")
}

// TestProber_ReplyForRemovedContact 联系人已不在路由表时回复被忽略
func TestProber_ReplyForRemovedContact(t *testing.T) {
	sender := mocks.NewMockProbeSender()
	refresher := mocks.NewMockRefresher()
	refresher.Known = map[types.ID]bool{}
	p := startProber(t, sender)
	p.SetRefresher(refresher)

	p.SendHello(testInfo(1))
	call := waitSent(t, sender)
	assert.Eventually(t, func() bool { return p.Pending() == 1 }, time.Second, time.Millisecond)

	assert.False(t, p.HandleReply(call.Nonce))
	assert.Len(t, refresher.Calls(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.replies.WithLabelValues(outcomeGone)))

	t.Log("✅ 过期回复被忽略")
}

// TestProber_StartStop 启停语义
func TestProber_StartStop(t *testing.T) {
	p, err := New(mocks.NewMockProbeSender(), WithConfig(testConfig()))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, p.Stop(ctx), ErrNotStarted)
	require.NoError(t, p.Start(ctx))
	assert.ErrorIs(t, p.Start(ctx), ErrAlreadyStarted)
	require.NoError(t, p.Stop(ctx))

	t.Log("✅ 启停正确")
}

// TestProber_ConcurrentSendHello 并发调用安全
func TestProber_ConcurrentSendHello(t *testing.T) {
	sender := mocks.NewMockProbeSender()
	p := startProber(t, sender)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				p.SendHello(testInfo(uint64(g*100 + i)))
			}
		}(g)
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return len(sender.Calls()) == 40 }, 5*time.Second, time.Millisecond)

	t.Log("✅ 并发发送正确")
}

// TestLogSender 日志发送方总是成功
func TestLogSender(t *testing.T) {
	err := LogSender{}.SendHello(context.Background(), netip.MustParseAddrPort("10.0.0.1:4672"), testInfo(1), "nonce")
	assert.NoError(t, err)
}
