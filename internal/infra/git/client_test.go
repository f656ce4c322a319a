package git

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir))
	assert.True(t, IsRepository(dir))
	assert.NoError(t, Validate(dir))
}

func TestInitialize_AlreadyInitialized(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	err := Initialize(dir)
	require.Error(t, err)
}

func TestValidate_NotARepository(t *testing.T) {
	dir := t.TempDir()
	err := Validate(filepath.Join(dir, "nope"))
	require.Error(t, err)
}
