package types

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/bits"
	"strings"
)

// IDBits 标识符位数
const IDBits = 128

// IDBytes 标识符字节数
const IDBytes = IDBits / 8

// ============================================================================
//                              ID - 128 位标识符
// ============================================================================

// ID 节点与键共用的 128 位标识符
//
// 两个 ID 的距离为按位异或，结果同样是一个 ID，
// 按无符号整数比较，越小越近。
type ID [IDBytes]byte

// ZeroID 全零 ID
var ZeroID ID

// IDFromUint64s 由高低两个 64 位整数构造 ID
func IDFromUint64s(hi, lo uint64) ID {
	var id ID
	binary.BigEndian.PutUint64(id[:8], hi)
	binary.BigEndian.PutUint64(id[8:], lo)
	return id
}

// IDFromBytes 从字节切片创建 ID
func IDFromBytes(b []byte) (ID, error) {
	if len(b) != IDBytes {
		return ZeroID, fmt.Errorf("%w: got %d bytes", ErrInvalidID, len(b))
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// ParseID 解析 32 位十六进制字符串
func ParseID(s string) (ID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != IDBytes*2 {
		return ZeroID, ErrInvalidID
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ZeroID, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return IDFromBytes(raw)
}

// RandomID 生成随机 ID
func RandomID() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		panic(fmt.Sprintf("types: crypto/rand failed: %v", err))
	}
	return id
}

// String 返回 32 位小写十六进制表示
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// ShortString 返回前 8 位十六进制，用于日志
func (id ID) ShortString() string {
	return id.String()[:8]
}

// Bytes 返回字节切片副本
func (id ID) Bytes() []byte {
	b := make([]byte, IDBytes)
	copy(b, id[:])
	return b
}

// IsZero 是否为全零 ID
func (id ID) IsZero() bool {
	return id == ZeroID
}

// Uint64s 返回高低两个 64 位整数
func (id ID) Uint64s() (hi, lo uint64) {
	return binary.BigEndian.Uint64(id[:8]), binary.BigEndian.Uint64(id[8:])
}

// Xor 返回 id 与 other 的 XOR 距离
func (id ID) Xor(other ID) ID {
	var d ID
	for i := range id {
		d[i] = id[i] ^ other[i]
	}
	return d
}

// Bit 返回第 i 位（0 为最高位）
func (id ID) Bit(i int) uint8 {
	if i < 0 || i >= IDBits {
		panic(fmt.Sprintf("types: bit index %d out of range", i))
	}
	return (id[i/8] >> (7 - uint(i%8))) & 1
}

// SetBit 返回第 i 位被设置为 v 的新 ID
func (id ID) SetBit(i int, v uint8) ID {
	if i < 0 || i >= IDBits {
		panic(fmt.Sprintf("types: bit index %d out of range", i))
	}
	mask := byte(1) << (7 - uint(i%8))
	if v == 0 {
		id[i/8] &^= mask
	} else {
		id[i/8] |= mask
	}
	return id
}

// Cmp 按无符号整数比较：-1 小于，0 相等，1 大于
func (id ID) Cmp(other ID) int {
	for i := range id {
		switch {
		case id[i] < other[i]:
			return -1
		case id[i] > other[i]:
			return 1
		}
	}
	return 0
}

// MarshalText 实现 encoding.TextMarshaler
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ============================================================================
//                              距离工具
// ============================================================================

// CommonPrefixLen 计算两个 ID 的共同前缀长度（按位计数）
func CommonPrefixLen(a, b ID) int {
	d := a.Xor(b)
	for i, v := range d {
		if v != 0 {
			return i*8 + bits.LeadingZeros8(v)
		}
	}
	return IDBits
}

// CompareDistance 比较 a 和 b 到 target 的距离
//
// 返回 -1 表示 a 更近，0 表示相等，1 表示 b 更近。
func CompareDistance(a, b, target ID) int {
	return a.Xor(target).Cmp(b.Xor(target))
}
