package probe

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/pkg/interfaces"
)

// Params 探测器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config         `optional:"true"`
	Sender     interfaces.ProbeSender `optional:"true"`
	Registerer prometheus.Registerer  `optional:"true"`
	Clock      clock.Clock            `optional:"true"`
}

// Result 探测器模块提供的结果
type Result struct {
	fx.Out

	Prober    *Prober
	Interface interfaces.Prober
}

// Module 返回探测器 Fx 模块
//
// 提供:
//   - *Prober
//   - interfaces.Prober: 供路由表发出探测
//
// 未提供 interfaces.ProbeSender 时使用 LogSender。
// 存在 interfaces.Refresher 时自动接上回复处理。
func Module() fx.Option {
	return fx.Module("probe",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// NewFromParams 从依赖参数创建探测器
func NewFromParams(p Params) (Result, error) {
	sender := p.Sender
	if sender == nil {
		sender = LogSender{}
	}

	opts := []Option{
		WithConfig(ConfigFromUnified(p.UnifiedCfg)),
		WithMetrics(p.Registerer),
	}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}

	prober, err := New(sender, opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Prober: prober, Interface: prober}, nil
}

type lifecycleParams struct {
	fx.In

	LC        fx.Lifecycle
	Prober    *Prober
	Refresher interfaces.Refresher `optional:"true"`
}

func registerLifecycle(p lifecycleParams) {
	if p.Refresher != nil {
		p.Prober.SetRefresher(p.Refresher)
	}
	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return p.Prober.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return p.Prober.Stop(ctx)
		},
	})
}
