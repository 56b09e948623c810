package kad

import (
	"math/rand"
	"time"

	"github.com/dep2p/go-kadtable/pkg/types"
)

// ============================================================================
//                              K 桶
// ============================================================================

// kBucket 容量为 K 的有序联系人列表
//
// 最久未刷新的在前，最近刷新的在后；同一 ID 最多出现一次。
// 由路由表锁保护，自身不加锁。
type kBucket struct {
	contacts []*Contact
	capacity int
}

func newKBucket(capacity int) *kBucket {
	return &kBucket{
		contacts: make([]*Contact, 0, capacity),
		capacity: capacity,
	}
}

// len 返回联系人数量
func (b *kBucket) len() int {
	return len(b.contacts)
}

// full 是否已满
func (b *kBucket) full() bool {
	return len(b.contacts) >= b.capacity
}

// indexOf 返回联系人下标，不存在时返回 -1
func (b *kBucket) indexOf(id types.ID) int {
	for i, c := range b.contacts {
		if c.id == id {
			return i
		}
	}
	return -1
}

// get 按 ID 查找
func (b *kBucket) get(id types.ID) *Contact {
	if i := b.indexOf(id); i >= 0 {
		return b.contacts[i]
	}
	return nil
}

// add 追加到最近端，已满或 ID 已存在时返回 false
func (b *kBucket) add(c *Contact) bool {
	if b.full() || b.indexOf(c.id) >= 0 {
		return false
	}
	b.contacts = append(b.contacts, c)
	return true
}

// remove 按 ID 删除并返回被删除的联系人
func (b *kBucket) remove(id types.ID) *Contact {
	i := b.indexOf(id)
	if i < 0 {
		return nil
	}
	c := b.contacts[i]
	copy(b.contacts[i:], b.contacts[i+1:])
	b.contacts[len(b.contacts)-1] = nil
	b.contacts = b.contacts[:len(b.contacts)-1]
	return c
}

// promote 移到最近端（删除后重新加入）
func (b *kBucket) promote(id types.ID, now time.Time) bool {
	c := b.remove(id)
	if c == nil {
		return false
	}
	c.lastTouched = now
	b.contacts = append(b.contacts, c)
	return true
}

// oldest 返回最久未刷新的联系人，空桶返回 nil
func (b *kBucket) oldest() *Contact {
	if len(b.contacts) == 0 {
		return nil
	}
	return b.contacts[0]
}

// evictable 返回最久未刷新的待删除联系人，没有时返回 nil
func (b *kBucket) evictable() *Contact {
	for _, c := range b.contacts {
		if c.state == types.StatePromptedForDeletion {
			return c
		}
	}
	return nil
}

// random 随机返回一个联系人，空桶返回 nil
func (b *kBucket) random(rng *rand.Rand) *Contact {
	if len(b.contacts) == 0 {
		return nil
	}
	return b.contacts[rng.Intn(len(b.contacts))]
}

// list 返回当前联系人列表的副本
func (b *kBucket) list() []*Contact {
	out := make([]*Contact, len(b.contacts))
	copy(out, b.contacts)
	return out
}

// infos 返回快照列表
func (b *kBucket) infos() []types.ContactInfo {
	out := make([]types.ContactInfo, len(b.contacts))
	for i, c := range b.contacts {
		out[i] = c.Info()
	}
	return out
}
