package kad

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// sweeper 维护循环驱动的目标
type sweeper interface {
	NumContacts() int
	MaintainTable()
}

// maintainer 后台维护循环
//
// 路由表为空时每 idle 轮询一次，否则执行一次维护扫描后等待 sweep。
// 等待期间不持有路由表锁。
type maintainer struct {
	target sweeper
	clock  clock.Clock
	idle   time.Duration
	sweep  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newMaintainer(target sweeper, clk clock.Clock, idle, sweep time.Duration) *maintainer {
	return &maintainer{
		target: target,
		clock:  clk,
		idle:   idle,
		sweep:  sweep,
	}
}

// start 启动循环
func (m *maintainer) start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
	return nil
}

// stop 取消循环并等待其退出，等待受 ctx 限制
func (m *maintainer) stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// running 循环是否在运行
func (m *maintainer) running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *maintainer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		wait := m.idle
		if m.target.NumContacts() > 0 {
			m.target.MaintainTable()
			wait = m.sweep
		}

		select {
		case <-ctx.Done():
			return
		case <-m.clock.After(wait):
		}
	}
}
