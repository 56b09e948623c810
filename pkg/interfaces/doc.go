// Package interfaces 定义 kadtable 的公共接口
//
// 接口文件与实现目录一一对应：
//   - routing.go  - 路由表（internal/routing/kad）
//   - probe.go    - 存活探测（internal/probe）与外部传输边界
//   - storage.go  - 存储引擎（internal/core/storage）
//
// 上层 overlay 服务只依赖本包中的接口，路由表实现通过
// fx 注入，而不是进程级全局单例。
package interfaces
