package kadtable

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/pkg/interfaces"
	"github.com/dep2p/go-kadtable/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// config 统一配置，选项在其上修改
	config *config.Config

	// sender overlay 传输，为空时使用只记录日志的发送方
	sender interfaces.ProbeSender

	// fxLogger Fx 容器日志，为空时静默
	fxLogger fxevent.Logger

	// extra 用户自定义 Fx 选项
	extra []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		config: config.NewConfig(),
	}
}

// WithConfig 使用完整配置替换默认配置
//
// 需要放在其它选项之前，否则之前的修改会被覆盖。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithLocalID 指定本地节点 ID
func WithLocalID(id types.ID) Option {
	return func(o *options) error {
		if id.IsZero() {
			return errors.New("local id must not be zero")
		}
		o.config.Identity.LocalID = id.String()
		return nil
	}
}

// WithDataDir 设置数据目录
//
// 未指定本地 ID 时，ID 文件保存在数据目录中，重启后快照仍然有效。
func WithDataDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return errors.New("data dir must not be empty")
		}
		o.config.Storage.DataDir = dir
		return nil
	}
}

// WithInMemory 使用内存存储，同时关闭快照持久化
func WithInMemory() Option {
	return func(o *options) error {
		o.config.Storage.InMemory = true
		o.config.Routing.Persist = false
		return nil
	}
}

// WithBucketSize 设置叶子桶容量 K
func WithBucketSize(k int) Option {
	return func(o *options) error {
		if k <= 0 {
			return fmt.Errorf("bucket size must be positive: %d", k)
		}
		o.config.Routing.BucketSize = k
		return nil
	}
}

// WithSweepInterval 设置维护扫描间隔
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("sweep interval must be positive: %s", d)
		}
		o.config.Routing.SweepInterval = config.Duration(d)
		return nil
	}
}

// WithProbeRate 设置每秒最多发出的探测数
func WithProbeRate(perSecond float64) Option {
	return func(o *options) error {
		if perSecond <= 0 {
			return fmt.Errorf("probe rate must be positive: %v", perSecond)
		}
		o.config.Probe.RatePerSecond = perSecond
		return nil
	}
}

// WithSender 设置 overlay 传输
func WithSender(sender interfaces.ProbeSender) Option {
	return func(o *options) error {
		o.sender = sender
		return nil
	}
}

// WithFxLogger 设置 Fx 容器日志
func WithFxLogger(l fxevent.Logger) Option {
	return func(o *options) error {
		o.fxLogger = l
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.extra = append(o.extra, opts...)
		return nil
	}
}
