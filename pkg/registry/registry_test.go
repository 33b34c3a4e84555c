package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsctl/pkg/filesystem"
	"github.com/arthur-debert/dotsctl/pkg/paths"
)

func testPaths(t *testing.T) *paths.Paths {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, filepath.Join(t.TempDir(), "config"))
	p, err := paths.New()
	require.NoError(t, err)
	return p
}

func TestLoad_MissingFile(t *testing.T) {
	r, err := Load(filesystem.NewOS(), testPaths(t))
	require.NoError(t, err)
	assert.Empty(t, r.Sources())
}

func TestAdd(t *testing.T) {
	p := testPaths(t)
	r, err := Load(filesystem.NewOS(), p)
	require.NoError(t, err)

	source := t.TempDir()
	added, err := r.Add(source)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{source}, r.Sources())
}

func TestAdd_Deduplicates(t *testing.T) {
	p := testPaths(t)
	r, err := Load(filesystem.NewOS(), p)
	require.NoError(t, err)

	source := t.TempDir()
	added, err := r.Add(source)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.Add(source)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Len(t, r.Sources(), 1)
}

func TestAdd_DeduplicatesSymlinkAlias(t *testing.T) {
	p := testPaths(t)
	r, err := Load(filesystem.NewOS(), p)
	require.NoError(t, err)

	base := t.TempDir()
	source := filepath.Join(base, "dotfiles")
	require.NoError(t, os.Mkdir(source, 0o755))
	alias := filepath.Join(base, "alias")
	require.NoError(t, os.Symlink(source, alias))

	added, err := r.Add(source)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.Add(alias)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Len(t, r.Sources(), 1)
}

func TestAdd_PreservesOrder(t *testing.T) {
	p := testPaths(t)
	r, err := Load(filesystem.NewOS(), p)
	require.NoError(t, err)

	first := t.TempDir()
	second := t.TempDir()
	_, err = r.Add(first)
	require.NoError(t, err)
	_, err = r.Add(second)
	require.NoError(t, err)
	_, err = r.Add(first) // re-add must not move it
	require.NoError(t, err)

	assert.Equal(t, []string{first, second}, r.Sources())
}

func TestAdd_MissingPathRejected(t *testing.T) {
	p := testPaths(t)
	r, err := Load(filesystem.NewOS(), p)
	require.NoError(t, err)

	_, err = r.Add(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.Empty(t, r.Sources())
}

func TestAdd_ExpandsAndNormalizes(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "dotfiles"), 0755))

	p := testPaths(t)
	r, err := Load(filesystem.NewOS(), p)
	require.NoError(t, err)

	_, err = r.Add("~/dotfiles")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "dotfiles")}, r.Sources())
}

func TestSaveAndReload(t *testing.T) {
	p := testPaths(t)
	fsys := filesystem.NewOS()

	r, err := Load(fsys, p)
	require.NoError(t, err)

	first := t.TempDir()
	second := t.TempDir()
	_, err = r.Add(first)
	require.NoError(t, err)
	_, err = r.Add(second)
	require.NoError(t, err)
	require.NoError(t, r.Save())

	// File carries the header comment
	content, err := os.ReadFile(p.SourcesFilePath())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# Automatically written file"))

	reloaded, err := Load(fsys, p)
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, reloaded.Sources())
}

func TestLoad_MalformedFile(t *testing.T) {
	p := testPaths(t)
	require.NoError(t, os.MkdirAll(p.ConfigDir(), 0755))
	require.NoError(t, os.WriteFile(p.SourcesFilePath(), []byte("{not yaml list"), 0644))

	_, err := Load(filesystem.NewOS(), p)
	assert.Error(t, err)
}
