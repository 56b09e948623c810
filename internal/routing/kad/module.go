package kad

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
	"github.com/dep2p/go-kadtable/internal/core/storage/kv"
	"github.com/dep2p/go-kadtable/pkg/interfaces"
)

// snapshotPrefix 路由表快照在存储中的键前缀
var snapshotPrefix = []byte("r/")

// Params 路由表依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Prober     interfaces.Prober
	Engine     engine.InternalEngine `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Clock      clock.Clock           `optional:"true"`
}

// Result 路由表模块提供的结果
type Result struct {
	fx.Out

	Table        *RoutingTable
	RoutingTable interfaces.RoutingTable
	Refresher    interfaces.Refresher
}

// Module 返回路由表 Fx 模块
//
// 提供:
//   - *RoutingTable
//   - interfaces.RoutingTable
//   - interfaces.Refresher: 探测回复通过它刷新联系人
//
// 生命周期:
//   - OnStart: 加载快照，启动维护循环
//   - OnStop: 停止维护循环，保存快照
func Module() fx.Option {
	return fx.Module("routing/kad",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// NewFromParams 从依赖参数创建路由表
func NewFromParams(p Params) (Result, error) {
	unified := p.UnifiedCfg
	if unified == nil {
		unified = config.NewConfig()
	}

	localID, err := unified.Identity.Resolve()
	if err != nil {
		return Result{}, fmt.Errorf("kad: resolve local id: %w", err)
	}

	opts := []Option{
		WithConfig(ConfigFromUnified(unified)),
		WithMetrics(p.Registerer),
	}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	if p.Engine != nil {
		opts = append(opts, WithStore(kv.New(p.Engine, snapshotPrefix)))
	}

	table, err := New(localID, p.Prober, opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Table:        table,
		RoutingTable: table,
		Refresher:    table,
	}, nil
}

func registerLifecycle(lc fx.Lifecycle, table *RoutingTable) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return table.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return table.Stop(ctx)
		},
	})
}
