package kad

import (
	"math/rand"
	"sort"
	"time"

	"github.com/dep2p/go-kadtable/pkg/types"
)

// ============================================================================
//                              区域树节点
// ============================================================================

// zone 区域树节点
//
// 叶子持有恰好一个桶，内部节点持有恰好两个子节点。
// level 是已固定的距离位数，index 是这些位构成的距离前缀，
// index 为零表示该区域覆盖本地 ID。
type zone struct {
	level int
	index types.ID

	bucket *kBucket
	left   *zone // 距离位 0
	right  *zone // 距离位 1
}

func newLeaf(level int, index types.ID, capacity int) *zone {
	return &zone{
		level:  level,
		index:  index,
		bucket: newKBucket(capacity),
	}
}

// isLeaf 是否为叶子
func (z *zone) isLeaf() bool {
	return z.bucket != nil
}

// subnet 返回叶子持有的桶，内部节点返回 nil
func (z *zone) subnet() *kBucket {
	return z.bucket
}

// leftChild 返回距离位为 0 的子节点，叶子返回 nil
func (z *zone) leftChild() *zone {
	return z.left
}

// rightChild 返回距离位为 1 的子节点，叶子返回 nil
func (z *zone) rightChild() *zone {
	return z.right
}

// coversLocal 是否覆盖本地 ID
func (z *zone) coversLocal() bool {
	return z.index.IsZero()
}

// child 按距离在本层的位选择子节点
func (z *zone) child(distance types.ID) *zone {
	if distance.Bit(z.level) == 0 {
		return z.left
	}
	return z.right
}

// leafFor 返回距离所在的叶子
func (z *zone) leafFor(distance types.ID) *zone {
	n := z
	for !n.isLeaf() {
		n = n.child(distance)
	}
	return n
}

// ============================================================================
//                              插入
// ============================================================================

// addOp 一次插入的上下文与结果
type addOp struct {
	local    types.ID
	now      time.Time
	capacity int

	inserted  bool // 新增了一条联系人
	refreshed bool // ID 已存在，已刷新
	splits    int
	evicted   *Contact
}

// add 把联系人加入子树
func (z *zone) add(op *addOp, c *Contact) bool {
	distance := op.local.Xor(c.id)
	leaf := z.leafFor(distance)
	b := leaf.bucket

	if existing := b.get(c.id); existing != nil {
		existing.updateFrom(c.Info())
		existing.Touch(op.now)
		b.promote(c.id, op.now)
		op.refreshed = true
		return true
	}

	if b.add(c) {
		op.inserted = true
		return true
	}

	if leaf.coversLocal() {
		if leaf.level >= types.IDBits {
			return false
		}
		leaf.split(op.local)
		op.splits++
		return leaf.add(op, c)
	}

	victim := b.evictable()
	if victim == nil {
		return false
	}
	b.remove(victim.id)
	b.add(c)
	op.evicted = victim
	return true
}

// split 把叶子变为内部节点，按下一个距离位重新分配联系人
//
// 子桶保持原有的新旧顺序。
func (z *zone) split(local types.ID) {
	capacity := z.bucket.capacity
	z.left = newLeaf(z.level+1, z.index, capacity)
	z.right = newLeaf(z.level+1, z.index.SetBit(z.level, 1), capacity)

	for _, c := range z.bucket.contacts {
		dst := z.child(local.Xor(c.id))
		dst.bucket.contacts = append(dst.bucket.contacts, c)
	}
	z.bucket = nil
}

// ============================================================================
//                              查询
// ============================================================================

// randomContact 随机下降，子树为空时回溯到兄弟
func (z *zone) randomContact(rng *rand.Rand) *Contact {
	if z.isLeaf() {
		return z.bucket.random(rng)
	}

	first, second := z.left, z.right
	if rng.Intn(2) == 1 {
		first, second = second, first
	}
	if c := first.randomContact(rng); c != nil {
		return c
	}
	return second.randomContact(rng)
}

// leaves 按中序访问所有叶子
func (z *zone) leaves(fn func(*zone)) {
	if z.isLeaf() {
		fn(z)
		return
	}
	z.left.leaves(fn)
	z.right.leaves(fn)
}

// numContacts 子树中的联系人总数
func (z *zone) numContacts() int {
	if z.isLeaf() {
		return z.bucket.len()
	}
	return z.left.numContacts() + z.right.numContacts()
}

// numLeaves 子树中的叶子数
func (z *zone) numLeaves() int {
	if z.isLeaf() {
		return 1
	}
	return z.left.numLeaves() + z.right.numLeaves()
}

// closest 返回距离 target 最近的至多 n 个联系人
func (z *zone) closest(target types.ID, n int) []*Contact {
	if n <= 0 {
		return nil
	}
	var all []*Contact
	z.leaves(func(leaf *zone) {
		all = append(all, leaf.bucket.contacts...)
	})
	sort.Slice(all, func(i, j int) bool {
		return types.CompareDistance(all[i].id, all[j].id, target) < 0
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// ============================================================================
//                              合并
// ============================================================================

// mergeLeaves 后序合并联系人总数不超过 capacity 的兄弟叶子
//
// 合并自底向上级联，返回合并次数。
func (z *zone) mergeLeaves(capacity int) int {
	if z.isLeaf() {
		return 0
	}

	merged := z.left.mergeLeaves(capacity) + z.right.mergeLeaves(capacity)

	if !z.left.isLeaf() || !z.right.isLeaf() {
		return merged
	}
	if z.left.bucket.len()+z.right.bucket.len() > capacity {
		return merged
	}

	b := newKBucket(capacity)
	b.contacts = append(b.contacts, z.left.bucket.contacts...)
	b.contacts = append(b.contacts, z.right.bucket.contacts...)
	sort.SliceStable(b.contacts, func(i, j int) bool {
		return b.contacts[i].lastTouched.Before(b.contacts[j].lastTouched)
	})

	z.bucket = b
	z.left, z.right = nil, nil
	return merged + 1
}
