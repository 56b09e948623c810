// Package probe 实现路由表的存活探测器
//
// 路由表在维护锁内调用 Prober.SendHello，因此 SendHello 只把联系人
// 放入有界队列后立即返回。后台 worker 按令牌桶限速逐个取出，
// 生成一次性 nonce，记录 nonce → 联系人 ID，再交给外部
// ProbeSender 发送 HELLO 请求。
//
//	routing/kad ──SendHello──▶ 队列 ──▶ worker ──▶ ProbeSender（overlay）
//	     ▲                                          │
//	     └──────Refresh◀──HandleReply(nonce)◀───────┘
//
// 回复到达时 overlay 调用 HandleReply(nonce)，Prober 通过 Refresher
// 刷新对应联系人。没有回复的联系人在回复窗口过后由路由表删除。
//
// 未完成的 nonce 保存在容量有限的 LRU 中，最旧的条目被淘汰后
// 迟到的回复会被忽略。
package probe
