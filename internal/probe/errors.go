package probe

import "errors"

// 预定义错误
var (
	// ErrAlreadyStarted 探测器已启动
	ErrAlreadyStarted = errors.New("probe: prober already started")

	// ErrNotStarted 探测器未启动
	ErrNotStarted = errors.New("probe: prober not started")

	// ErrNilSender 发送方为空
	ErrNilSender = errors.New("probe: sender is nil")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("probe: invalid config")
)
