package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled: true,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled: cfg.Metrics.Enabled,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Metrics 模块提供的结果
type Result struct {
	fx.Out

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewRegistryFromParams),
)

// NewRegistryFromParams 从参数创建 Prometheus 注册表
//
// 启用时额外注册 Go 运行时与进程采集器。
func NewRegistryFromParams(p Params) Result {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	reg := NewRegistry(cfg)
	return Result{Registerer: reg, Gatherer: reg}
}

// NewRegistry 创建私有 Prometheus 注册表
func NewRegistry(cfg Config) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	if cfg.Enabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		logger.Debug("指标收集已启用")
	}
	return reg
}

// Register 注册采集器，已注册时返回已有的采集器
//
// 同一注册表上重复创建路由表（例如测试中）不会因此失败。
func Register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		logger.Warn("注册指标失败", "error", err)
	}
	return c
}
