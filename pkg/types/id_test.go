package types

import (
	"encoding/json"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// ID 测试
// ============================================================================

func TestID_ParseAndString(t *testing.T) {
	id := IDFromUint64s(0x0123456789abcdef, 0xfedcba9876543210)

	s := id.String()
	assert.Equal(t, "0123456789abcdeffedcba9876543210", s)

	parsed, err := ParseID(s)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("abc")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = ParseID("zz23456789abcdeffedcba9876543210")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestID_Bit(t *testing.T) {
	id := IDFromUint64s(1<<63, 1)

	assert.Equal(t, uint8(1), id.Bit(0))
	assert.Equal(t, uint8(0), id.Bit(1))
	assert.Equal(t, uint8(1), id.Bit(127))
	assert.Equal(t, uint8(0), id.Bit(126))

	assert.Panics(t, func() { id.Bit(128) })
}

func TestID_SetBit(t *testing.T) {
	id := ZeroID.SetBit(0, 1).SetBit(9, 1)
	assert.Equal(t, uint8(1), id.Bit(0))
	assert.Equal(t, uint8(1), id.Bit(9))
	assert.Equal(t, uint8(0), id.SetBit(9, 0).Bit(9))
}

func TestID_XorAndCmp(t *testing.T) {
	a := IDFromUint64s(0, 0b1100)
	b := IDFromUint64s(0, 0b1010)

	assert.Equal(t, IDFromUint64s(0, 0b0110), a.Xor(b))
	assert.True(t, a.Xor(a).IsZero())
	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestCommonPrefixLen(t *testing.T) {
	a := IDFromUint64s(0, 0)
	assert.Equal(t, IDBits, CommonPrefixLen(a, a))
	assert.Equal(t, 0, CommonPrefixLen(a, IDFromUint64s(1<<63, 0)))
	assert.Equal(t, 127, CommonPrefixLen(a, IDFromUint64s(0, 1)))
	assert.Equal(t, 8, CommonPrefixLen(a, IDFromUint64s(1<<55, 0)))
}

func TestCompareDistance(t *testing.T) {
	target := IDFromUint64s(0, 0)
	near := IDFromUint64s(0, 1)
	far := IDFromUint64s(1, 0)

	assert.Equal(t, -1, CompareDistance(near, far, target))
	assert.Equal(t, 1, CompareDistance(far, near, target))
	assert.Equal(t, 0, CompareDistance(near, near, target))
}

func TestID_JSON(t *testing.T) {
	id := RandomID()

	data, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{id})
	require.NoError(t, err)

	var decoded struct {
		ID ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded.ID)
}

// ============================================================================
// ContactInfo 测试
// ============================================================================

func TestIPv4Conversion(t *testing.T) {
	addr := netip.MustParseAddr("192.168.1.20")

	ip, err := IPv4ToUint32(addr)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xC0A80114), ip)
	assert.Equal(t, addr, Uint32ToIPv4(ip))

	_, err = IPv4ToUint32(netip.MustParseAddr("::1"))
	assert.ErrorIs(t, err, ErrInvalidIPv4)
}

func TestContactInfo_Addr(t *testing.T) {
	c := ContactInfo{IP: 0x7F000001, UDPPort: 4672, TCPPort: 4662}

	assert.Equal(t, "127.0.0.1:4672", c.Addr().String())
	assert.Equal(t, "127.0.0.1:4662", c.TCPAddr().String())
}

func TestUDPKey_KeyFor(t *testing.T) {
	k := UDPKey{Key: 42, IP: 7}

	assert.Equal(t, uint32(42), k.KeyFor(7))
	assert.Equal(t, uint32(0), k.KeyFor(8))
	assert.True(t, UDPKey{}.IsZero())
}

func TestContactState_String(t *testing.T) {
	assert.Equal(t, "normal", StateNormal.String())
	assert.Equal(t, "prompted-for-deletion", StatePromptedForDeletion.String())
}
