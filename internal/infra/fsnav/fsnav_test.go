package fsnav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDirectorySkipsDotfilesAndSortsDirsFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "zdir"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "afile.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))

	entries, err := ListDirectory(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "zdir", entries[0].Name)
	assert.True(t, entries[0].IsDirectory)
	assert.Equal(t, "afile.txt", entries[1].Name)
	assert.False(t, entries[1].IsDirectory)
}

func TestParentDirectory(t *testing.T) {
	assert.Equal(t, filepath.Clean("/a"), ParentDirectory("/a/b"))
}

func TestCreateProjectDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "myproj")
	path, err := CreateProjectDirectory(target)
	require.NoError(t, err)
	assert.DirExists(t, path)

	_, err = CreateProjectDirectory(target)
	assert.Error(t, err)
}
