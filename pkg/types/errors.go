package types

import "errors"

var (
	// ErrInvalidID 无效的 ID（长度或十六进制格式错误）
	ErrInvalidID = errors.New("invalid ID: must be 32 hex digits")

	// ErrInvalidIPv4 无效的 IPv4 地址
	ErrInvalidIPv4 = errors.New("invalid IPv4 address")
)
