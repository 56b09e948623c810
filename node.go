package kadtable

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-kadtable/internal/probe"
	"github.com/dep2p/go-kadtable/internal/routing/kad"
	"github.com/dep2p/go-kadtable/pkg/lib/log"
	"github.com/dep2p/go-kadtable/pkg/types"
)

var logger = log.Logger("kadtable")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 空闲状态（已创建，未启动）
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// 超时配置
const (
	// startTimeout Fx App 启动超时
	startTimeout = 30 * time.Second

	// closeTimeout Close 使用的停止超时
	closeTimeout = 30 * time.Second
)

// Node 路由表节点
//
// Node 是一个门面，持有 Fx 应用以及其中的路由表和探测器。
// Fx 应用只能启动一次：Stop 之后节点不可重新启动。
type Node struct {
	mu    sync.Mutex
	app   *fx.App
	state NodeState

	table  *kad.RoutingTable
	prober *probe.Prober
}

// New 按选项创建节点（未启动）
func New(opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	node := &Node{}
	app, err := buildFxApp(o, node)
	if err != nil {
		return nil, err
	}
	node.app = app
	return node, nil
}

// Start 启动节点
//
// 依次启动存储引擎、探测器和路由表；路由表启动时加载快照。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateRunning:
		return ErrAlreadyStarted
	case StateStopped:
		return ErrNodeClosed
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := n.app.Start(startCtx); err != nil {
		logger.Error("节点启动失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}

	n.state = StateRunning
	logger.Info("节点已启动",
		"localID", n.table.LocalID().String(),
		"contacts", n.table.NumContacts())
	return nil
}

// Stop 停止节点
//
// Fx 按反向顺序调用 OnStop：路由表先停止并保存快照，存储引擎最后关闭。
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateIdle:
		return ErrNotStarted
	case StateStopped:
		return ErrNodeClosed
	}

	n.state = StateStopped
	if err := n.app.Stop(ctx); err != nil {
		logger.Error("停止节点失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	logger.Info("节点已停止")
	return nil
}

// Close 关闭节点，可重复调用
func (n *Node) Close() error {
	n.mu.Lock()
	state := n.state
	n.mu.Unlock()

	if state != StateRunning {
		n.mu.Lock()
		n.state = StateStopped
		n.mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return n.Stop(ctx)
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Table 返回路由表
func (n *Node) Table() *kad.RoutingTable {
	return n.table
}

// Prober 返回探测器
//
// overlay 传输收到 HELLO 回复时调用 Prober().HandleReply(nonce)。
func (n *Node) Prober() *probe.Prober {
	return n.prober
}

// LocalID 返回本地节点 ID
func (n *Node) LocalID() types.ID {
	return n.table.LocalID()
}

// ════════════════════════════════════════════════════════════════════════════
//                              摘要
// ════════════════════════════════════════════════════════════════════════════

// Summary 路由表运行摘要
type Summary struct {
	LocalID    types.ID
	Contacts   int
	Leaves     int
	Buckets    []types.BucketInfo
	ProbesSent int64
	ProbeRate  float64
	Pending    int
}

// Summary 返回当前摘要
func (n *Node) Summary() Summary {
	return Summary{
		LocalID:    n.table.LocalID(),
		Contacts:   n.table.NumContacts(),
		Leaves:     n.table.NumLeaves(),
		Buckets:    n.table.AllKBuckets(),
		ProbesSent: n.prober.SentTotal(),
		ProbeRate:  n.prober.SentRate(),
		Pending:    n.prober.Pending(),
	}
}
