package interfaces

import (
	"context"
	"net/netip"

	"github.com/dep2p/go-kadtable/pkg/types"
)

// Prober 存活探测发送方
//
// 路由表在维护锁内调用 SendHello，因此实现必须立即返回，
// 不得等待网络 I/O 或对端回复。
type Prober interface {
	// SendHello 向联系人发起一次性存活探测（fire-and-forget）
	SendHello(info types.ContactInfo)
}

// ProbeSender 外部 overlay 传输边界
//
// 真正把 HELLO 请求发到网络上的组件。nonce 需原样出现在回复中，
// 以便 Prober 将回复与联系人对应起来。
type ProbeSender interface {
	SendHello(ctx context.Context, addr netip.AddrPort, info types.ContactInfo, nonce string) error
}
