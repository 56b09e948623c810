package mocks

import (
	"context"
	"net/netip"
	"sync"

	"github.com/dep2p/go-kadtable/pkg/interfaces"
	"github.com/dep2p/go-kadtable/pkg/types"
)

// ============================================================================
//                              MockProber
// ============================================================================

// MockProber 模拟 Prober 接口实现
type MockProber struct {
	mu sync.Mutex

	// 可覆盖的方法
	SendHelloFunc func(info types.ContactInfo)

	// 调用记录
	SendHelloCalls []types.ContactInfo
}

// NewMockProber 创建 MockProber
func NewMockProber() *MockProber {
	return &MockProber{}
}

// SendHello 记录探测
func (m *MockProber) SendHello(info types.ContactInfo) {
	m.mu.Lock()
	m.SendHelloCalls = append(m.SendHelloCalls, info)
	fn := m.SendHelloFunc
	m.mu.Unlock()

	if fn != nil {
		fn(info)
	}
}

// Calls 返回调用记录的副本
func (m *MockProber) Calls() []types.ContactInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.ContactInfo(nil), m.SendHelloCalls...)
}

// Reset 清空调用记录
func (m *MockProber) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendHelloCalls = nil
}

// ============================================================================
//                              MockProbeSender
// ============================================================================

// SendHelloCall 记录一次 ProbeSender.SendHello 调用
type SendHelloCall struct {
	Addr  netip.AddrPort
	Info  types.ContactInfo
	Nonce string
}

// MockProbeSender 模拟 ProbeSender 接口实现
type MockProbeSender struct {
	mu sync.Mutex

	// 可覆盖的方法
	SendHelloFunc func(ctx context.Context, addr netip.AddrPort, info types.ContactInfo, nonce string) error

	// 调用记录
	SendHelloCalls []SendHelloCall

	// Sent 每次调用后写入（非阻塞，满时丢弃），便于测试等待
	Sent chan SendHelloCall
}

// NewMockProbeSender 创建 MockProbeSender
func NewMockProbeSender() *MockProbeSender {
	return &MockProbeSender{
		Sent: make(chan SendHelloCall, 64),
	}
}

// SendHello 记录发送
func (m *MockProbeSender) SendHello(ctx context.Context, addr netip.AddrPort, info types.ContactInfo, nonce string) error {
	call := SendHelloCall{Addr: addr, Info: info, Nonce: nonce}

	m.mu.Lock()
	m.SendHelloCalls = append(m.SendHelloCalls, call)
	fn := m.SendHelloFunc
	m.mu.Unlock()

	select {
	case m.Sent <- call:
	default:
	}

	if fn != nil {
		return fn(ctx, addr, info, nonce)
	}
	return nil
}

// Calls 返回调用记录的副本
func (m *MockProbeSender) Calls() []SendHelloCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SendHelloCall(nil), m.SendHelloCalls...)
}

// ============================================================================
//                              MockRefresher
// ============================================================================

// MockRefresher 模拟 Refresher 接口实现
type MockRefresher struct {
	mu sync.Mutex

	// Known 视为存在的联系人；为 nil 时所有 ID 都视为存在
	Known map[types.ID]bool

	// 可覆盖的方法
	RefreshFunc func(id types.ID) bool

	// 调用记录
	RefreshCalls []types.ID
}

// NewMockRefresher 创建 MockRefresher
func NewMockRefresher() *MockRefresher {
	return &MockRefresher{}
}

// Refresh 记录刷新
func (m *MockRefresher) Refresh(id types.ID) bool {
	m.mu.Lock()
	m.RefreshCalls = append(m.RefreshCalls, id)
	fn, known := m.RefreshFunc, m.Known
	m.mu.Unlock()

	if fn != nil {
		return fn(id)
	}
	if known == nil {
		return true
	}
	return known[id]
}

// Calls 返回调用记录的副本
func (m *MockRefresher) Calls() []types.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.ID(nil), m.RefreshCalls...)
}

var (
	_ interfaces.Prober      = (*MockProber)(nil)
	_ interfaces.ProbeSender = (*MockProbeSender)(nil)
	_ interfaces.Refresher   = (*MockRefresher)(nil)
)
