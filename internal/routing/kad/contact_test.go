package kad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-kadtable/pkg/types"
)

// TestContact_New 新联系人从正常状态开始
func TestContact_New(t *testing.T) {
	now := time.Unix(1000, 0)
	info := contactInfo(idAt(1, 0))
	info.State = types.StatePromptedForDeletion
	info.Expires = now.Add(time.Hour)

	c := NewContact(info, now)

	assert.Equal(t, info.ID, c.ID())
	assert.Equal(t, types.StateNormal, c.State())
	_, ok := c.Expires()
	assert.False(t, ok, "构造时忽略传入的过期时间")
	assert.Equal(t, now, c.LastTouched())
	assert.Equal(t, now, c.Info().Created)

	t.Log("✅ 新联系人状态正确")
}

// TestContact_FastAging 快速老化覆盖此前的过期时间
func TestContact_FastAging(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewContact(contactInfo(idAt(1, 0)), now)

	c.FastAging(now, 2*time.Minute)
	exp, ok := c.Expires()
	assert.True(t, ok)
	assert.Equal(t, now.Add(2*time.Minute), exp)
	assert.Equal(t, types.StatePromptedForDeletion, c.State())

	later := now.Add(30 * time.Second)
	c.FastAging(later, 2*time.Minute)
	exp, _ = c.Expires()
	assert.Equal(t, later.Add(2*time.Minute), exp)

	t.Log("✅ 快速老化正确")
}

// TestContact_ExpiryChecks 过期与等待回复的判定
func TestContact_ExpiryChecks(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewContact(contactInfo(idAt(1, 0)), now)

	assert.False(t, c.expired(now))
	assert.False(t, c.awaitingReply(now))

	c.FastAging(now, 2*time.Minute)
	assert.True(t, c.awaitingReply(now))
	assert.False(t, c.expired(now.Add(time.Minute)))
	assert.True(t, c.expired(now.Add(2*time.Minute)), "到期时刻即视为过期")

	c.Touch(now.Add(time.Minute))
	assert.False(t, c.expired(now.Add(time.Hour)))
	assert.Equal(t, types.StateNormal, c.State())

	t.Log("✅ 过期判定正确")
}

// TestContact_UpdateFrom 重复加入时更新端点，已验证保持已验证
func TestContact_UpdateFrom(t *testing.T) {
	now := time.Unix(1000, 0)
	info := contactInfo(idAt(1, 0))
	info.Verified = true
	c := NewContact(info, now)

	update := info
	update.UDPPort = 5000
	update.Version = 9
	update.UDPKey = types.UDPKey{Key: 7, IP: 8}
	update.Verified = false
	c.updateFrom(update)

	assert.Equal(t, uint16(5000), c.UDPPort())
	assert.Equal(t, uint8(9), c.Version())
	assert.Equal(t, types.UDPKey{Key: 7, IP: 8}, c.UDPKey())
	assert.True(t, c.Verified())

	t.Log("✅ 端点更新正确")
}
