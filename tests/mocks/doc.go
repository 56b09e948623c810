// Package mocks 提供统一的测试 Mock 实现
//
// 每个 Mock 都带有可覆盖的 ...Func 字段与调用记录，
// 并发调用安全（维护循环与探测 worker 在后台 goroutine 中调用它们）。
//
// # 探测 Mock
//
//   - MockProber: 模拟 interfaces.Prober，记录路由表发出的探测
//   - MockProbeSender: 模拟 interfaces.ProbeSender，记录发到网络的 HELLO
//   - MockRefresher: 模拟 interfaces.Refresher，记录探测回复触发的刷新
//
// # 使用示例
//
//	prober := mocks.NewMockProber()
//	table, _ := kad.New(localID, prober)
//	table.MaintainTable()
//	assert.Len(t, prober.Calls(), 1)
package mocks
