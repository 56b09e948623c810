package kadtable

import (
	"fmt"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/internal/core/metrics"
	"github.com/dep2p/go-kadtable/internal/core/storage"
	"github.com/dep2p/go-kadtable/internal/probe"
	"github.com/dep2p/go-kadtable/internal/routing/kad"
	"github.com/dep2p/go-kadtable/pkg/interfaces"
	"github.com/dep2p/go-kadtable/pkg/lib/log"
)

var fxLogger = log.Logger("kadtable/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. storage: 快照存储引擎
//  2. metrics: Prometheus 注册表
//  3. probe: 存活探测
//  4. routing/kad: 路由表（依赖 probe 与 storage）
func buildFxApp(o *options, node *Node) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置修正与验证
	// ════════════════════════════════════════════════════════════════════════
	cfg := o.config
	if cfg.Routing.Persist && cfg.Identity.LocalID == "" && cfg.Identity.IDFile == "" {
		// 快照只对同一个本地 ID 有意义
		cfg.Identity.IDFile = filepath.Join(cfg.Storage.DataDir, "local.id")
	}

	cfg, err := config.ValidateAndFix(cfg)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := config.ValidateCompatibility(cfg); err != nil {
		return nil, fmt.Errorf("config incompatible: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 模块装配
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
		fx.WithLogger(func() fxevent.Logger {
			if o.fxLogger != nil {
				return o.fxLogger
			}
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),

		storage.Module(),
		metrics.Module,
	}

	if o.sender != nil {
		sender := o.sender
		modules = append(modules, fx.Provide(func() interfaces.ProbeSender { return sender }))
	}

	modules = append(modules,
		probe.Module(),
		kad.Module(),
		fx.Populate(&node.table, &node.prober),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 用户扩展
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.extra...)

	fxLogger.Debug("构建 Fx 应用", "modules", len(modules), "persist", cfg.Routing.Persist)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("fx app: %w", err)
	}
	return app, nil
}
