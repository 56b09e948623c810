// Package kad 实现基于区域树（zone tree）的 Kademlia 路由表
//
// 路由表按 XOR 距离把远端联系人组织在一棵 128 位二叉前缀树上：
//
//	                  root (level 0)
//	                 /              \
//	        left (距离位=0)      right (距离位=1)
//	         /       \               [KBucket]
//	   left      right
//	[KBucket]  [KBucket]
//
// 每个叶子持有一个容量为 K 的 KBucket，内部节点恰好有两个子节点。
// 只有覆盖本地 ID 的叶子（距离前缀全为 0）在满时才会分裂，
// 其余满桶只能驱逐已在等待探测回复的联系人，否则拒绝新联系人。
//
// # 维护
//
// 后台维护循环在路由表为空时每秒轮询一次，否则每 60 秒执行一次
// MaintainTable：
//  1. 删除已发出探测且回复窗口到期的联系人
//  2. 对每个桶中最久未刷新的联系人发送一次存活探测并快速老化
//  3. 距上次合并超过 45 分钟时合并稀疏的兄弟叶子
//
// 探测回复通过 Refresh 把联系人恢复为正常状态。
//
// # 并发
//
// 一把互斥锁保护整棵树与所有桶。维护扫描全程持锁，
// 探测在锁内发出但不等待回复。对外返回的都是值快照。
package kad
