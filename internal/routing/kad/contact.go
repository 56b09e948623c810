package kad

import (
	"time"

	"github.com/dep2p/go-kadtable/pkg/types"
)

// Contact 路由表中的一个远端节点
//
// Contact 不是并发安全的，加入路由表后只在表锁内访问。
type Contact struct {
	id       types.ID
	ip       uint32
	udpPort  uint16
	tcpPort  uint16
	version  uint8
	udpKey   types.UDPKey
	verified bool

	state       types.ContactState
	expires     time.Time // 零值表示未设置
	created     time.Time
	lastTouched time.Time
}

// NewContact 根据描述创建联系人
//
// 状态与过期时间总是从正常、未设置开始，info 中的对应字段被忽略。
func NewContact(info types.ContactInfo, now time.Time) *Contact {
	return &Contact{
		id:          info.ID,
		ip:          info.IP,
		udpPort:     info.UDPPort,
		tcpPort:     info.TCPPort,
		version:     info.Version,
		udpKey:      info.UDPKey,
		verified:    info.Verified,
		state:       types.StateNormal,
		created:     now,
		lastTouched: now,
	}
}

// ID 返回节点 ID
func (c *Contact) ID() types.ID { return c.id }

// IP 返回 IPv4 地址
func (c *Contact) IP() uint32 { return c.ip }

// UDPPort 返回 UDP 端口
func (c *Contact) UDPPort() uint16 { return c.udpPort }

// TCPPort 返回 TCP 端口
func (c *Contact) TCPPort() uint16 { return c.tcpPort }

// Version 返回协议版本
func (c *Contact) Version() uint8 { return c.version }

// UDPKey 返回混淆密钥
func (c *Contact) UDPKey() types.UDPKey { return c.udpKey }

// Verified 是否已验证
func (c *Contact) Verified() bool { return c.verified }

// State 返回生命周期状态
func (c *Contact) State() types.ContactState { return c.state }

// Expires 返回过期时间，ok 为 false 表示未设置
func (c *Contact) Expires() (t time.Time, ok bool) {
	return c.expires, !c.expires.IsZero()
}

// LastTouched 返回最近刷新时间
func (c *Contact) LastTouched() time.Time { return c.lastTouched }

// FastAging 标记为待删除，并把过期时间设为 now + window
//
// 覆盖此前的任何过期时间。
func (c *Contact) FastAging(now time.Time, window time.Duration) {
	c.state = types.StatePromptedForDeletion
	c.expires = now.Add(window)
}

// Touch 恢复为正常状态并清除过期时间
func (c *Contact) Touch(now time.Time) {
	c.state = types.StateNormal
	c.expires = time.Time{}
	c.lastTouched = now
}

// Info 返回快照
func (c *Contact) Info() types.ContactInfo {
	return types.ContactInfo{
		ID:          c.id,
		IP:          c.ip,
		UDPPort:     c.udpPort,
		TCPPort:     c.tcpPort,
		Version:     c.version,
		UDPKey:      c.udpKey,
		Verified:    c.verified,
		State:       c.state,
		Expires:     c.expires,
		Created:     c.created,
		LastTouched: c.lastTouched,
	}
}

// updateFrom 用新的描述更新端点字段；已验证的联系人保持已验证
func (c *Contact) updateFrom(info types.ContactInfo) {
	c.ip = info.IP
	c.udpPort = info.UDPPort
	c.tcpPort = info.TCPPort
	c.version = info.Version
	c.udpKey = info.UDPKey
	c.verified = c.verified || info.Verified
}

// expired 已发出探测且回复窗口已过
func (c *Contact) expired(now time.Time) bool {
	return c.state == types.StatePromptedForDeletion &&
		!c.expires.IsZero() && !c.expires.After(now)
}

// awaitingReply 探测仍在回复窗口内，或已处于待删除状态
func (c *Contact) awaitingReply(now time.Time) bool {
	if c.state == types.StatePromptedForDeletion {
		return true
	}
	return !c.expires.IsZero() && !c.expires.Before(now)
}
