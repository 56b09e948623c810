package kad

import "errors"

// 预定义错误
var (
	// ErrAlreadyStarted 维护循环已启动
	ErrAlreadyStarted = errors.New("kad: routing table already started")

	// ErrNotStarted 维护循环未启动
	ErrNotStarted = errors.New("kad: routing table not started")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("kad: invalid config")

	// ErrNilProber 探测器为空
	ErrNilProber = errors.New("kad: prober is nil")

	// ErrNoStore 未配置快照存储
	ErrNoStore = errors.New("kad: snapshot store not configured")

	// ErrCorruptRecord 快照记录损坏
	ErrCorruptRecord = errors.New("kad: corrupt contact record")
)
