package storage

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
	"github.com/dep2p/go-kadtable/internal/core/storage/engine/badger"
	"github.com/dep2p/go-kadtable/internal/core/storage/kv"
	"github.com/dep2p/go-kadtable/pkg/lib/log"
)

var logger = log.Logger("core/storage")

// Params Storage 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Storage 模块提供的结果
type Result struct {
	fx.Out

	Engine engine.InternalEngine
	Config Config
}

// Module 返回 Storage Fx 模块
//
// 提供:
//   - engine.InternalEngine: 存储引擎实例
//   - Config: 存储配置
//
// 生命周期:
//   - OnStart: 启动引擎（GC 等后台任务）
//   - OnStop: 关闭引擎
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideStorage),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideStorage 提供存储引擎和配置
func ProvideStorage(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	eng, err := NewEngine(cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Engine: eng, Config: cfg}, nil
}

// registerLifecycle 注册生命周期钩子
//
// 存储模块先于路由表注册，fx 按逆序执行 OnStop，
// 因此路由表保存快照时引擎仍然可用。
func registerLifecycle(lc fx.Lifecycle, eng engine.InternalEngine) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := eng.Start(); err != nil {
				logger.Error("存储引擎启动失败", "error", err)
				return err
			}
			logger.Debug("存储引擎已启动")
			return nil
		},
		OnStop: func(_ context.Context) error {
			if err := eng.Close(); err != nil {
				logger.Warn("存储引擎关闭失败", "error", err)
				return err
			}
			logger.Debug("存储引擎已关闭")
			return nil
		},
	})
}

// NewEngine 根据配置创建存储引擎
func NewEngine(cfg Config) (engine.InternalEngine, error) {
	logger.Debug("创建存储引擎", "path", cfg.Path, "inMemory", cfg.InMemory)
	eng, err := badger.New(cfg.ToEngineConfig())
	if err != nil {
		logger.Error("创建存储引擎失败", "error", err)
		return nil, err
	}
	return eng, nil
}

// NewKVStore 创建带前缀的 KVStore
func NewKVStore(eng engine.InternalEngine, prefix []byte) *kv.Store {
	return kv.New(eng, prefix)
}

// ============= 类型别名（便于外部使用） =============

// InternalEngine 是 engine.InternalEngine 的类型别名
type InternalEngine = engine.InternalEngine

// KVStore 是 kv.Store 的类型别名
type KVStore = kv.Store
