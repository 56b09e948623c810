package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 环境变量前缀和名称常量（供 cmd 层使用）
const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "KADTABLE_"

	// EnvLocalID 本地节点 ID
	EnvLocalID = "LOCAL_ID"

	// EnvDataDir 数据目录
	EnvDataDir = "DATA_DIR"

	// EnvBucketSize 桶容量 K
	EnvBucketSize = "BUCKET_SIZE"

	// EnvSweepInterval 维护扫描间隔（如 "30s"）
	EnvSweepInterval = "SWEEP_INTERVAL"

	// EnvProbeRate 每秒探测数
	EnvProbeRate = "PROBE_RATE"

	// EnvPersist 是否持久化快照
	EnvPersist = "PERSIST"

	// EnvMetrics 是否启用指标
	EnvMetrics = "METRICS"
)

// ApplyEnv 用环境变量覆盖配置
//
// getenv 通常为 os.Getenv。无法解析的值返回错误，配置保持部分更新。
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	get := func(name string) string {
		return strings.TrimSpace(getenv(EnvPrefix + name))
	}

	if v := get(EnvLocalID); v != "" {
		cfg.Identity.LocalID = v
	}
	if v := get(EnvDataDir); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := get(EnvBucketSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvBucketSize, err)
		}
		cfg.Routing.BucketSize = n
	}
	if v := get(EnvSweepInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvSweepInterval, err)
		}
		cfg.Routing.SweepInterval = Duration(d)
	}
	if v := get(EnvProbeRate); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvProbeRate, err)
		}
		cfg.Probe.RatePerSecond = r
	}
	if v := get(EnvPersist); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvPersist, err)
		}
		cfg.Routing.Persist = b
	}
	if v := get(EnvMetrics); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvMetrics, err)
		}
		cfg.Metrics.Enabled = b
	}
	return nil
}
