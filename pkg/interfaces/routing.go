package interfaces

import (
	"github.com/dep2p/go-kadtable/pkg/types"
)

// RoutingTable 路由表接口
//
// 所有方法都是并发安全的，内部由一把互斥锁串行化。
// 返回的联系人都是快照，修改它们不会影响路由表。
type RoutingTable interface {
	// LocalID 返回本地节点 ID
	LocalID() types.ID

	// Add 按字段添加联系人
	//
	// 返回 false 表示被拒绝：ID 等于本地 ID、协议版本过低，
	// 或所在桶已满且没有可驱逐的联系人。
	// 已存在的 ID 会被刷新而不会产生重复条目。
	Add(info types.ContactInfo) bool

	// RandomContact 随机返回一个联系人，路由表为空时 ok 为 false
	RandomContact() (info types.ContactInfo, ok bool)

	// NumContacts 返回联系人总数
	NumContacts() int

	// AllKBuckets 按树的中序返回所有叶子桶的快照
	AllKBuckets() []types.BucketInfo

	// ClosestContacts 返回距离 target 最近的至多 max 个联系人
	ClosestContacts(target types.ID, max int) []types.ContactInfo

	// MaintainTable 执行一次维护扫描（过期清理、探测、合并）
	MaintainTable()
}

// Refresher 存活回复的接收方
//
// 探测回复到达时由 Prober 调用，把对应联系人恢复为正常状态。
type Refresher interface {
	// Refresh 刷新联系人，未找到时返回 false
	Refresh(id types.ID) bool
}
