// Package metrics 提供监控指标收集
//
// metrics 模块提供两类能力：
//   - Prometheus 注册表：路由表与探测器在其上注册计数器、仪表和直方图
//   - RateMeter：基于 60 个 1 秒桶的滑动窗口速率计算
//
// # 快速开始
//
//	app := fx.New(
//	    metrics.Module,
//	    kad.Module(),
//	)
//
// 未启用指标时，Module 提供的注册表为私有注册表，
// 注册的指标仍然可用，只是不会对外暴露。
//
// # 速率计算
//
//	meter := metrics.NewRateMeter(clock.New())
//	meter.Add(1)
//	fmt.Printf("%.2f/s\n", meter.Rate())
package metrics
