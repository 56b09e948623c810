package probe

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-kadtable/internal/core/metrics"
	"github.com/dep2p/go-kadtable/pkg/interfaces"
	"github.com/dep2p/go-kadtable/pkg/lib/log"
	"github.com/dep2p/go-kadtable/pkg/types"
)

var logger = log.Logger("probe")

// 回复结果标签
const (
	outcomeRefreshed = "refreshed"
	outcomeUnknown   = "unknown"
	outcomeGone      = "gone"
)

// Option 探测器选项
type Option func(*Prober)

// WithConfig 设置配置
func WithConfig(cfg Config) Option {
	return func(p *Prober) { p.cfg = cfg }
}

// WithRefresher 设置回复的接收方
func WithRefresher(r interfaces.Refresher) Option {
	return func(p *Prober) { p.refresher = r }
}

// WithMetrics 在指定注册表上注册指标
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Prober) { p.registerer = reg }
}

// WithClock 设置速率统计使用的时钟
func WithClock(clk clock.Clock) Option {
	return func(p *Prober) { p.clock = clk }
}

// Prober 存活探测器
type Prober struct {
	cfg        Config
	sender     interfaces.ProbeSender
	limiter    *rate.Limiter
	pending    *lru.Cache[string, types.ID]
	queue      chan types.ContactInfo
	clock      clock.Clock
	meter      *metrics.RateMeter
	registerer prometheus.Registerer
	metrics    *proberMetrics

	refMu     sync.RWMutex
	refresher interfaces.Refresher

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New 创建探测器
func New(sender interfaces.ProbeSender, opts ...Option) (*Prober, error) {
	if sender == nil {
		return nil, ErrNilSender
	}

	p := &Prober{
		cfg:    DefaultConfig(),
		sender: sender,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	p.metrics = newProberMetrics(p.registerer)
	pending, err := lru.NewWithEvict[string, types.ID](p.cfg.MaxOutstanding, func(nonce string, id types.ID) {
		logger.Debug("未完成探测被淘汰", "nonce", nonce, "peer", id.ShortString())
	})
	if err != nil {
		return nil, err
	}
	p.pending = pending
	p.limiter = rate.NewLimiter(rate.Limit(p.cfg.RatePerSecond), p.cfg.Burst)
	p.queue = make(chan types.ContactInfo, p.cfg.QueueSize)
	p.meter = metrics.NewRateMeter(p.clock)
	return p, nil
}

// SetRefresher 设置回复的接收方
func (p *Prober) SetRefresher(r interfaces.Refresher) {
	p.refMu.Lock()
	defer p.refMu.Unlock()
	p.refresher = r
}

// SendHello 把探测放入队列，立即返回；队列满时丢弃
func (p *Prober) SendHello(info types.ContactInfo) {
	select {
	case p.queue <- info:
	default:
		p.metrics.dropped.Inc()
		logger.Debug("探测队列已满，丢弃探测", "peer", info.ID.ShortString())
	}
}

// HandleReply 处理探测回复
//
// nonce 未知（已淘汰或从未发出）时返回 false。
func (p *Prober) HandleReply(nonce string) bool {
	id, ok := p.pending.Peek(nonce)
	if !ok {
		p.metrics.replies.WithLabelValues(outcomeUnknown).Inc()
		return false
	}
	p.pending.Remove(nonce)
	p.metrics.pending.Set(float64(p.pending.Len()))

	p.refMu.RLock()
	r := p.refresher
	p.refMu.RUnlock()

	if r == nil || !r.Refresh(id) {
		p.metrics.replies.WithLabelValues(outcomeGone).Inc()
		return false
	}
	p.metrics.replies.WithLabelValues(outcomeRefreshed).Inc()
	return true
}

// Pending 返回未完成探测数
func (p *Prober) Pending() int {
	return p.pending.Len()
}

// QueueLen 返回队列中待发送的探测数
func (p *Prober) QueueLen() int {
	return len(p.queue)
}

// SentRate 返回最近一分钟的平均发送速率（次/秒）
func (p *Prober) SentRate() float64 {
	return p.meter.Rate()
}

// SentTotal 返回累计发送数
func (p *Prober) SentTotal() int64 {
	return p.meter.Total()
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 启动发送 worker
func (p *Prober) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)

	logger.Debug("探测器已启动", "rate", p.cfg.RatePerSecond, "queue", p.cfg.QueueSize)
	return nil
}

// Stop 停止 worker；队列中尚未发送的探测被丢弃
func (p *Prober) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()

	select {
	case <-done:
		logger.Debug("探测器已停止", "sent", p.meter.Total())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Prober) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		var info types.ContactInfo
		select {
		case <-ctx.Done():
			return
		case info = <-p.queue:
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		p.send(ctx, info)
	}
}

// send 生成 nonce 并交给发送方；发送失败只记录日志
func (p *Prober) send(ctx context.Context, info types.ContactInfo) {
	nonce := uuid.NewString()
	p.pending.Add(nonce, info.ID)
	p.metrics.pending.Set(float64(p.pending.Len()))

	sendCtx, cancel := context.WithTimeout(ctx, p.cfg.SendTimeout)
	defer cancel()

	if err := p.sender.SendHello(sendCtx, info.Addr(), info, nonce); err != nil {
		p.pending.Remove(nonce)
		p.metrics.pending.Set(float64(p.pending.Len()))
		p.metrics.sendErrors.Inc()
		logger.Warn("发送探测失败", "peer", info.ID.ShortString(), "addr", info.Addr(), "error", err)
		return
	}

	p.metrics.sent.Inc()
	p.meter.Add(1)
}

var _ interfaces.Prober = (*Prober)(nil)
