package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-kadtable/config"
	"github.com/dep2p/go-kadtable/internal/core/storage/engine"
)

func TestConfigFromUnified(t *testing.T) {
	cfg := ConfigFromUnified(nil)
	assert.Equal(t, DefaultConfig(), cfg)

	unified := config.NewConfig()
	unified.Storage.DataDir = "/tmp/kt"
	cfg = ConfigFromUnified(unified)
	assert.Equal(t, filepath.Join("/tmp/kt", "kadtable.db"), cfg.Path)
	assert.False(t, cfg.InMemory)

	unified.Storage.InMemory = true
	cfg = ConfigFromUnified(unified)
	assert.True(t, cfg.InMemory)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Config{InMemory: true, GCInterval: 1, GCDiscardRatio: 2}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.GCDiscardRatio)
	assert.Greater(t, cfg.GCInterval.Seconds(), 59.0)
}

func TestModule_Lifecycle(t *testing.T) {
	unified := config.NewConfig()
	unified.Storage.DataDir = t.TempDir()

	var eng engine.InternalEngine
	app := fxtest.New(t,
		fx.Supply(unified),
		Module(),
		fx.Populate(&eng),
	)
	app.RequireStart()

	require.NotNil(t, eng)
	store := NewKVStore(eng, []byte("r/"))
	require.NoError(t, store.Put([]byte("k"), []byte("v")))

	app.RequireStop()

	// 停止后引擎已关闭
	_, err := eng.Get([]byte("r/k"))
	assert.True(t, IsClosed(err))
}
