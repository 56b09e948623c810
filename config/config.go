// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Routing.BucketSize = 16
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("kadtable.json")
package config

// Config 是 kadtable 的完整配置结构
//
// 配置按照功能模块组织：
//   - Identity: 本地节点标识
//   - Routing: 路由表（桶容量、维护节奏、合并间隔）
//   - Probe: 存活探测（速率、队列、未完成探测缓存）
//   - Storage: 路由表快照存储
//   - Metrics: 指标收集
type Config struct {
	// Identity 本地节点标识配置
	Identity IdentityConfig `json:"identity"`

	// Routing 路由表配置
	Routing RoutingConfig `json:"routing"`

	// Probe 存活探测配置
	Probe ProbeConfig `json:"probe"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity: DefaultIdentityConfig(),
		Routing:  DefaultRoutingConfig(),
		Probe:    DefaultProbeConfig(),
		Storage:  DefaultStorageConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置，发现无效配置时返回第一个错误。
func (c *Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Routing.Validate(); err != nil {
		return err
	}
	if err := c.Probe.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return nil
}
