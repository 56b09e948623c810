package probe

import (
	"context"
	"net/netip"

	"github.com/dep2p/go-kadtable/pkg/interfaces"
	"github.com/dep2p/go-kadtable/pkg/types"
)

// LogSender 只记录日志的发送方
//
// 没有 overlay 传输时使用：探测不会得到回复，联系人在回复窗口后过期。
type LogSender struct{}

// SendHello 记录一条 HELLO 日志
func (LogSender) SendHello(_ context.Context, addr netip.AddrPort, info types.ContactInfo, nonce string) error {
	logger.Info("HELLO", "peer", info.ID.String(), "addr", addr, "version", info.Version, "nonce", nonce)
	return nil
}

var _ interfaces.ProbeSender = LogSender{}
