// Package main 提供 kadtable 命令行入口
//
// 运行一张路由表：加载快照、按节奏执行维护扫描、
// 通过只记录日志的发送方发出存活探测，退出时保存快照并打印摘要。
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	kadtable "github.com/dep2p/go-kadtable"
	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/internal/routing/kad"
	"github.com/dep2p/go-kadtable/pkg/lib/log"
	"github.com/dep2p/go-kadtable/pkg/types"
)

var logger = log.Logger("kadtable/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 优先级（从高到低）：命令行参数 > 环境变量（KADTABLE_*）> 配置文件 > 默认值
var (
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	dataDir    = flag.String("data-dir", "", "数据目录（默认: ./data）")
	localID    = flag.String("local-id", "", "本地节点 ID（32 位十六进制，默认随机）")
	seed       = flag.Int("seed", 0, "启动后加入的随机联系人数量（演示用）")
	logLevel   = flag.String("log-level", "info", "日志级别 (debug/info/warn/error)")
	verboseFx  = flag.Bool("verbose-fx", false, "输出依赖注入容器日志")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}

	log.SetLevel(log.ParseLevel(*logLevel))

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	node, err := kadtable.New(
		kadtable.WithConfig(cfg),
		kadtable.WithFxLogger(newFxLogger()),
	)
	if err != nil {
		return fmt.Errorf("创建节点失败: %w", err)
	}
	defer node.Close()

	if err := node.Start(context.Background()); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	logger.Info("启动 kadtable", "version", kadtable.VersionInfo(), "localID", node.LocalID().String())

	if *seed > 0 {
		added := seedContacts(node.Table(), *seed)
		logger.Info("已加入随机联系人", "requested", *seed, "added", added)
	}

	fmt.Printf("路由表已启动，本地 ID %s，按 Ctrl+C 退出\n", node.LocalID())
	waitForSignal()
	fmt.Println("\n正在关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	stopErr := node.Stop(ctx)

	printSummary(node.Summary())
	return stopErr
}

// buildConfig 按优先级合并配置，验证留给节点装配
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}

	if isFlagSet("data-dir") {
		cfg.Storage.DataDir = *dataDir
	}
	if isFlagSet("local-id") {
		cfg.Identity.LocalID = *localID
	}
	return cfg, nil
}

// newFxLogger 返回 fx 容器日志，默认静默
func newFxLogger() fxevent.Logger {
	if !*verboseFx {
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}
	return &fxevent.ZapLogger{Logger: l}
}

// seedContacts 加入 n 个随机联系人，返回被接纳的数量
func seedContacts(table *kad.RoutingTable, n int) int {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	added := 0
	for i := 0; i < n; i++ {
		info := types.ContactInfo{
			ID:      types.RandomID(),
			IP:      0x0a000000 | uint32(rng.Intn(1<<24)),
			UDPPort: uint16(1024 + rng.Intn(60000)),
			TCPPort: uint16(1024 + rng.Intn(60000)),
			Version: uint8(7 + rng.Intn(3)),
		}
		if table.Add(info) {
			added++
		}
	}
	return added
}

// printSummary 打印路由表摘要
func printSummary(sum kadtable.Summary) {
	fmt.Println("════════════════════════════════════════════")
	fmt.Printf("  本地 ID:   %s\n", sum.LocalID)
	fmt.Printf("  联系人:    %d\n", sum.Contacts)
	fmt.Printf("  叶子桶:    %d\n", sum.Leaves)
	fmt.Printf("  已发探测:  %d (%.2f/s, 未回复 %d)\n", sum.ProbesSent, sum.ProbeRate, sum.Pending)
	fmt.Println("────────────────────────────────────────────")
	for _, b := range sum.Buckets {
		if len(b.Contacts) == 0 {
			continue
		}
		fmt.Printf("  level %3d  prefix %s  %d\n", b.Level, b.Prefix.ShortString(), len(b.Contacts))
	}
	fmt.Println("════════════════════════════════════════════")
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// waitForSignal 等待退出信号
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Println(kadtable.VersionInfo())
}
