package types

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"time"
)

// ============================================================================
//                              ContactState
// ============================================================================

// ContactState 联系人生命周期状态
type ContactState uint8

const (
	// StateNormal 正常状态
	StateNormal ContactState = iota

	// StatePromptedForDeletion 已发出存活探测，等待回复；
	// 到期仍未刷新则在下一次维护时删除
	StatePromptedForDeletion
)

// String 返回状态名称
func (s ContactState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StatePromptedForDeletion:
		return "prompted-for-deletion"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ============================================================================
//                              UDPKey
// ============================================================================

// UDPKey 对端下发的 UDP 混淆密钥
//
// Key 只对签发时观察到的本地 IP 有效，因此与该 IP 一起保存。
type UDPKey struct {
	Key uint32 `json:"key"`
	IP  uint32 `json:"ip"`
}

// IsZero 是否为空密钥
func (k UDPKey) IsZero() bool {
	return k.Key == 0
}

// KeyFor 返回对指定本地 IP 有效的密钥，IP 不匹配时返回 0
func (k UDPKey) KeyFor(localIP uint32) uint32 {
	if k.IP != 0 && k.IP == localIP {
		return k.Key
	}
	return 0
}

// ============================================================================
//                              ContactInfo
// ============================================================================

// ContactInfo 联系人描述与存活状态的只读快照
//
// 路由表对外只返回快照，调用者不会持有受锁保护的内部状态。
type ContactInfo struct {
	// ID 节点 ID
	ID ID `json:"id"`

	// IP IPv4 地址（主机序）
	IP uint32 `json:"ip"`

	// UDPPort / TCPPort 端口
	UDPPort uint16 `json:"udp_port"`
	TCPPort uint16 `json:"tcp_port"`

	// Version 协议版本
	Version uint8 `json:"version"`

	// UDPKey 混淆密钥
	UDPKey UDPKey `json:"udp_key"`

	// Verified 是否已通过身份校验
	Verified bool `json:"verified"`

	// State 生命周期状态
	State ContactState `json:"state"`

	// Expires 过期时间，零值表示未设置
	Expires time.Time `json:"expires"`

	// Created 加入路由表的时间
	Created time.Time `json:"created"`

	// LastTouched 最近一次被刷新（加入、回复、提升）的时间
	LastTouched time.Time `json:"last_touched"`
}

// Addr 返回 UDP 地址
func (c ContactInfo) Addr() netip.AddrPort {
	return netip.AddrPortFrom(Uint32ToIPv4(c.IP), c.UDPPort)
}

// TCPAddr 返回 TCP 地址
func (c ContactInfo) TCPAddr() netip.AddrPort {
	return netip.AddrPortFrom(Uint32ToIPv4(c.IP), c.TCPPort)
}

// String 返回简短描述
func (c ContactInfo) String() string {
	return fmt.Sprintf("Contact{%s %s v%d %s}", c.ID.ShortString(), c.Addr(), c.Version, c.State)
}

// ============================================================================
//                              IPv4 工具
// ============================================================================

// IPv4ToUint32 将 IPv4 地址转换为 32 位整数
func IPv4ToUint32(addr netip.Addr) (uint32, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidIPv4, addr)
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

// Uint32ToIPv4 将 32 位整数转换为 IPv4 地址
func Uint32ToIPv4(ip uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], ip)
	return netip.AddrFrom4(b)
}

// ============================================================================
//                              BucketInfo
// ============================================================================

// BucketInfo 一个叶子桶的快照
type BucketInfo struct {
	// Level 叶子所在深度（已固定的距离位数）
	Level int `json:"level"`

	// Prefix 叶子覆盖的距离前缀（仅前 Level 位有效）
	Prefix ID `json:"prefix"`

	// Contacts 按最近使用排序，最久未刷新的在前
	Contacts []ContactInfo `json:"contacts"`
}
