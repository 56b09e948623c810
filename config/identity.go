package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dep2p/go-kadtable/pkg/types"
)

// IdentityConfig 本地节点标识配置
//
// 解析顺序：LocalID（显式指定）> IDFile（持久化）> 随机生成。
type IdentityConfig struct {
	// LocalID 本地节点 ID（32 位十六进制），为空时按 IDFile 解析
	LocalID string `json:"local_id,omitempty"`

	// IDFile ID 文件路径
	// 文件不存在且 AutoGenerate 为 true 时生成并写入
	IDFile string `json:"id_file,omitempty"`

	// AutoGenerate 当 ID 文件不存在时是否自动生成
	AutoGenerate bool `json:"auto_generate"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		AutoGenerate: true,
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if c.LocalID != "" {
		id, err := types.ParseID(c.LocalID)
		if err != nil {
			return fmt.Errorf("identity: %w", err)
		}
		if id.IsZero() {
			return errors.New("identity: local_id must not be zero")
		}
	}
	if c.LocalID == "" && c.IDFile == "" && !c.AutoGenerate {
		return errors.New("identity: local_id, id_file or auto_generate is required")
	}
	return nil
}

// Resolve 解析本地节点 ID
func (c IdentityConfig) Resolve() (types.ID, error) {
	if c.LocalID != "" {
		return types.ParseID(c.LocalID)
	}

	if c.IDFile != "" {
		data, err := os.ReadFile(c.IDFile) //nolint:gosec // G304: 用户指定的 ID 文件路径是预期行为
		switch {
		case err == nil:
			return types.ParseID(strings.TrimSpace(string(data)))
		case !errors.Is(err, os.ErrNotExist):
			return types.ZeroID, fmt.Errorf("identity: read id file: %w", err)
		case !c.AutoGenerate:
			return types.ZeroID, fmt.Errorf("identity: id file %s not found", c.IDFile)
		}

		id := types.RandomID()
		if err := os.MkdirAll(filepath.Dir(c.IDFile), 0o700); err != nil {
			return types.ZeroID, fmt.Errorf("identity: create id dir: %w", err)
		}
		if err := os.WriteFile(c.IDFile, []byte(id.String()+"\n"), 0o600); err != nil {
			return types.ZeroID, fmt.Errorf("identity: write id file: %w", err)
		}
		return id, nil
	}

	if !c.AutoGenerate {
		return types.ZeroID, errors.New("identity: no local id configured")
	}
	return types.RandomID(), nil
}
