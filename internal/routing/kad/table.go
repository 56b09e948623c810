package kad

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/dep2p/go-kadtable/internal/core/storage/kv"
	"github.com/dep2p/go-kadtable/pkg/interfaces"
	"github.com/dep2p/go-kadtable/pkg/lib/log"
	"github.com/dep2p/go-kadtable/pkg/types"
)

var logger = log.Logger("routing/kad")

// ============================================================================
//                              选项
// ============================================================================

// Option 路由表选项
type Option func(*RoutingTable)

// WithConfig 设置配置
func WithConfig(cfg Config) Option {
	return func(t *RoutingTable) { t.cfg = cfg }
}

// WithClock 设置时钟（测试中使用 clock.NewMock）
func WithClock(clk clock.Clock) Option {
	return func(t *RoutingTable) { t.clock = clk }
}

// WithRand 设置随机源
func WithRand(rng *rand.Rand) Option {
	return func(t *RoutingTable) { t.rng = rng }
}

// WithMetrics 在指定注册表上注册指标
func WithMetrics(reg prometheus.Registerer) Option {
	return func(t *RoutingTable) { t.registerer = reg }
}

// WithStore 设置快照存储
func WithStore(store *kv.Store) Option {
	return func(t *RoutingTable) { t.store = store }
}

// ============================================================================
//                              路由表
// ============================================================================

// RoutingTable 区域树路由表
type RoutingTable struct {
	mu sync.Mutex

	localID types.ID
	root    *zone
	count   int

	prober     interfaces.Prober
	cfg        Config
	clock      clock.Clock
	rng        *rand.Rand
	registerer prometheus.Registerer
	metrics    *tableMetrics
	store      *kv.Store

	lastMerge time.Time

	maint *maintainer
}

// New 创建路由表
//
// prober 用于维护扫描中的存活探测，不能为空。
func New(localID types.ID, prober interfaces.Prober, opts ...Option) (*RoutingTable, error) {
	if prober == nil {
		return nil, ErrNilProber
	}

	t := &RoutingTable{
		localID: localID,
		prober:  prober,
		cfg:     DefaultConfig(),
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(t.clock.Now().UnixNano()))
	}

	t.root = newLeaf(0, types.ZeroID, t.cfg.BucketSize)
	t.metrics = newTableMetrics(t.registerer)
	t.metrics.leaves.Set(1)
	t.lastMerge = t.clock.Now()
	t.maint = newMaintainer(t, t.clock, t.cfg.IdleInterval, t.cfg.SweepInterval)

	logger.Debug("路由表已创建", "localID", localID.ShortString(), "k", t.cfg.BucketSize)
	return t, nil
}

// LocalID 返回本地节点 ID
func (t *RoutingTable) LocalID() types.ID {
	return t.localID
}

// Config 返回配置
func (t *RoutingTable) Config() Config {
	return t.cfg
}

// ============================================================================
//                              插入与删除
// ============================================================================

// Add 按字段添加联系人
//
// 拒绝本地 ID 与版本过低的联系人；被拒绝时不保留任何状态。
// ID 已存在时刷新该联系人并返回 true。
func (t *RoutingTable) Add(info types.ContactInfo) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.admissible(info.ID, info.Version) {
		return false
	}
	now := t.clock.Now()
	return t.addLocked(NewContact(info, now), now)
}

// AddContact 添加已构造的联系人
//
// 成功插入后路由表持有 c，调用者不应再修改它。
func (t *RoutingTable) AddContact(c *Contact) bool {
	if c == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.admissible(c.id, c.version) {
		return false
	}
	return t.addLocked(c, t.clock.Now())
}

// admissible 检查准入条件，调用者持有锁
func (t *RoutingTable) admissible(id types.ID, version uint8) bool {
	if id == t.localID {
		t.metrics.rejected.WithLabelValues(rejectSelf).Inc()
		return false
	}
	if version < t.cfg.MinVersion {
		t.metrics.rejected.WithLabelValues(rejectVersion).Inc()
		return false
	}
	return true
}

// addLocked 插入联系人，调用者持有锁
func (t *RoutingTable) addLocked(c *Contact, now time.Time) bool {
	op := &addOp{
		local:    t.localID,
		now:      now,
		capacity: t.cfg.BucketSize,
	}
	ok := t.root.add(op, c)

	if op.splits > 0 {
		t.metrics.splits.Add(float64(op.splits))
		t.metrics.leaves.Set(float64(t.root.numLeaves()))
	}
	if op.evicted != nil {
		t.metrics.evictions.Inc()
		logger.Debug("驱逐待删除联系人", "evicted", op.evicted.id.ShortString(), "by", c.id.ShortString())
	}
	if op.inserted {
		t.count++
		t.metrics.contacts.Set(float64(t.count))
	}
	if !ok {
		t.metrics.rejected.WithLabelValues(rejectFull).Inc()
	}
	return ok
}

// Remove 删除联系人，不存在时返回 false
func (t *RoutingTable) Remove(id types.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaf := t.root.leafFor(t.localID.Xor(id))
	if leaf.bucket.remove(id) == nil {
		return false
	}
	t.count--
	t.metrics.contacts.Set(float64(t.count))
	return true
}

// Refresh 收到存活回复后刷新联系人
//
// 恢复为正常状态、清除过期时间并提升到最近端，未找到时返回 false。
func (t *RoutingTable) Refresh(id types.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaf := t.root.leafFor(t.localID.Xor(id))
	c := leaf.bucket.get(id)
	if c == nil {
		return false
	}
	now := t.clock.Now()
	c.Touch(now)
	leaf.bucket.promote(id, now)
	return true
}

// ============================================================================
//                              查询
// ============================================================================

// Contact 按 ID 返回联系人快照
func (t *RoutingTable) Contact(id types.ID) (types.ContactInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.root.leafFor(t.localID.Xor(id)).bucket.get(id)
	if c == nil {
		return types.ContactInfo{}, false
	}
	return c.Info(), true
}

// RandomContact 随机返回一个联系人
func (t *RoutingTable) RandomContact() (types.ContactInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.root.randomContact(t.rng)
	if c == nil {
		return types.ContactInfo{}, false
	}
	return c.Info(), true
}

// NumContacts 返回联系人总数
func (t *RoutingTable) NumContacts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// NumLeaves 返回叶子桶数量
func (t *RoutingTable) NumLeaves() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root.numLeaves()
}

// AllKBuckets 按中序返回所有叶子桶的快照
func (t *RoutingTable) AllKBuckets() []types.BucketInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []types.BucketInfo
	t.root.leaves(func(z *zone) {
		out = append(out, types.BucketInfo{
			Level:    z.level,
			Prefix:   z.index,
			Contacts: z.bucket.infos(),
		})
	})
	return out
}

// ClosestContacts 返回距离 target 最近的至多 max 个联系人
func (t *RoutingTable) ClosestContacts(target types.ID, max int) []types.ContactInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	closest := t.root.closest(target, max)
	out := make([]types.ContactInfo, len(closest))
	for i, c := range closest {
		out[i] = c.Info()
	}
	return out
}

// ============================================================================
//                              维护
// ============================================================================

// MaintainTable 执行一次维护扫描
//
// 全程持锁。now 只取一次：
//  1. 删除回复窗口已过的待删除联系人
//  2. 每个桶取最久未刷新的联系人：仍在等待回复则只提升，
//     否则发送一次探测并快速老化
//  3. 距上次合并达到合并间隔时合并叶子
func (t *RoutingTable) MaintainTable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()

	var buckets []*kBucket
	t.root.leaves(func(z *zone) {
		buckets = append(buckets, z.bucket)
	})

	expired := 0
	for _, b := range buckets {
		for _, c := range b.list() {
			if c.expired(now) {
				b.remove(c.id)
				expired++
			}
		}
	}

	probes := 0
	for _, b := range buckets {
		c := b.oldest()
		if c == nil {
			continue
		}
		if c.awaitingReply(now) {
			b.promote(c.id, now)
			continue
		}
		t.prober.SendHello(c.Info())
		c.FastAging(now, t.cfg.ReplyWindow)
		probes++
	}

	merges := 0
	if now.Sub(t.lastMerge) >= t.cfg.MergeInterval {
		merges = t.root.mergeLeaves(t.cfg.BucketSize)
		t.lastMerge = now
	}

	t.count -= expired
	t.metrics.contacts.Set(float64(t.count))
	t.metrics.leaves.Set(float64(t.root.numLeaves()))
	t.metrics.expired.Add(float64(expired))
	t.metrics.probes.Add(float64(probes))
	t.metrics.merges.Add(float64(merges))
	t.metrics.sweeps.Inc()
	t.metrics.sweepDuration.Observe(t.clock.Since(now).Seconds())

	if expired > 0 || probes > 0 || merges > 0 {
		logger.Debug("维护扫描完成",
			"buckets", len(buckets),
			"expired", expired,
			"probes", probes,
			"merges", merges,
			"contacts", t.count)
	}
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 加载快照并启动维护循环
func (t *RoutingTable) Start(_ context.Context) error {
	if t.cfg.Persist && t.store != nil {
		n, err := t.LoadSnapshot()
		if err != nil {
			logger.Warn("加载路由表快照失败", "error", err)
		} else if n > 0 {
			logger.Info("已从快照恢复联系人", "count", n)
		}
	}
	if err := t.maint.start(); err != nil {
		return err
	}
	logger.Info("路由表已启动", "localID", t.localID.String(), "contacts", t.NumContacts())
	return nil
}

// Stop 停止维护循环并保存快照
func (t *RoutingTable) Stop(ctx context.Context) error {
	err := t.maint.stop(ctx)
	if t.cfg.Persist && t.store != nil {
		err = multierr.Append(err, t.SaveSnapshot())
	}
	logger.Info("路由表已停止", "contacts", t.NumContacts())
	return err
}

var (
	_ interfaces.RoutingTable = (*RoutingTable)(nil)
	_ interfaces.Refresher    = (*RoutingTable)(nil)
)
