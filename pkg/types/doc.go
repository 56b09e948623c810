// Package types 定义 kadtable 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - id.go       - ID（128 位标识符）与 XOR 距离工具
//   - contact.go  - ContactInfo 联系人快照、UDPKey、ContactState
//   - errors.go   - 公共错误定义
//
// # 位序约定
//
// ID 按大端序存储，第 0 位是最高位。路由树第 n 层使用
// XOR 距离的第 n 位选择子节点。
package types
