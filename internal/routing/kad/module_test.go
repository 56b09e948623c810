package kad

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/internal/core/metrics"
	"github.com/dep2p/go-kadtable/internal/core/storage"
	"github.com/dep2p/go-kadtable/pkg/interfaces"
	"github.com/dep2p/go-kadtable/tests/mocks"
)

func testUnifiedConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Identity.LocalID = testLocalID.String()
	cfg.Storage.DataDir = t.TempDir()
	return cfg
}

// TestConfigFromUnified 测试配置转换
func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	unified := config.NewConfig()
	unified.Routing.BucketSize = 16
	cfg := ConfigFromUnified(unified)
	assert.Equal(t, 16, cfg.BucketSize)
	assert.Equal(t, uint8(7), cfg.MinVersion)
	require.NoError(t, cfg.Validate())

	t.Log("✅ 配置转换正确")
}

// TestModule_Wiring 模块提供路由表并在停止时保存快照
func TestModule_Wiring(t *testing.T) {
	unified := testUnifiedConfig(t)
	prober := mocks.NewMockProber()

	var (
		table     *RoutingTable
		rt        interfaces.RoutingTable
		refresher interfaces.Refresher
		gatherer  prometheus.Gatherer
	)
	app := fxtest.New(t,
		fx.Supply(unified),
		fx.Provide(func() interfaces.Prober { return prober }),
		fx.Provide(func() clock.Clock { return clock.NewMock() }),
		storage.Module(),
		metrics.Module,
		Module(),
		fx.Populate(&table, &rt, &refresher, &gatherer),
	)
	app.RequireStart()

	assert.Equal(t, testLocalID, rt.LocalID())
	assert.Same(t, table, rt.(*RoutingTable))
	require.True(t, rt.Add(contactInfo(idAt(1, 0))))
	assert.True(t, refresher.Refresh(idAt(1, 0)))

	families, err := gatherer.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["kadtable_contacts"])

	app.RequireStop()

	// 新应用从同一数据目录恢复
	var restored interfaces.RoutingTable
	app2 := fxtest.New(t,
		fx.Supply(unified),
		fx.Provide(func() interfaces.Prober { return prober }),
		storage.Module(),
		Module(),
		fx.Populate(&restored),
	)
	app2.RequireStart()
	assert.Equal(t, 1, restored.NumContacts())
	app2.RequireStop()

	t.Log("✅ 模块装配正确")
}
