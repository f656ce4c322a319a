package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.False(t, cfg.Debug)
}

func TestLoad_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	content := `
port = 9000
debug = true
log_allow = ["/custom"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"/custom"}, cfg.LogAllow)
}

func TestLoad_MalformedFile_IsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("not = [valid toml"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
}
