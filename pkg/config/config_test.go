package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "node.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTOML(t, `
node_id = "node-1"
data_dir = "/tmp/zoocore-node-1"
bind_addr = "127.0.0.1:9001"
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "node-1", cfg.NodeID)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 20000, cfg.InputQueueBound)
	assert.False(t, cfg.Bootstrap)
}

func TestLoad_FlagOverridesFile(t *testing.T) {
	path := writeTOML(t, `
node_id = "node-1"
data_dir = "/tmp/zoocore-node-1"
bind_addr = "127.0.0.1:9001"
batch_size = 500
`)

	cfg, err := Load(path, []string{"--batch-size=2000", "--bootstrap"})
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.BatchSize)
	assert.True(t, cfg.Bootstrap)
	assert.Equal(t, "node-1", cfg.NodeID)
}

func TestLoad_MissingRequiredField(t *testing.T) {
	path := writeTOML(t, `
bind_addr = "127.0.0.1:9001"
`)

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestLoad_PeerList(t *testing.T) {
	path := writeTOML(t, `
node_id = "node-1"
data_dir = "/tmp/zoocore-node-1"
bind_addr = "127.0.0.1:9001"
peers = ["node-2=127.0.0.1:9002", "node-3=127.0.0.1:9003"]
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"node-2=127.0.0.1:9002", "node-3=127.0.0.1:9003"}, cfg.Peers)
}
