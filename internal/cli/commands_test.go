package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotsctl/pkg/types"
)

func init() {
	pterm.DisableColor()
}

// setupEnv points the config and state directories at temp space so
// tests never touch the real user directories.
func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DOTSCTL_CONFIG_DIR", filepath.Join(t.TempDir(), "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(t.TempDir(), "state"))
}

func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

// writeSourceFile writes a file with an embedded metadata block into
// dir and returns its path.
func writeSourceFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)

	stdout, _, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dotsctl version")
}

func TestAddAndListRoundTrip(t *testing.T) {
	setupEnv(t)
	source := t.TempDir()

	stdout, _, err := runCommand(t, "add", source)
	require.NoError(t, err)
	assert.Contains(t, stdout, "added "+source)

	stdout, _, err = runCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, source)

	// Adding the same source again is a no-op
	stdout, _, err = runCommand(t, "add", source)
	require.NoError(t, err)
	assert.Contains(t, stdout, "already registered")
}

func TestAddMissingPathFails(t *testing.T) {
	setupEnv(t)

	_, _, err := runCommand(t, "add", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestListEmpty(t *testing.T) {
	setupEnv(t)

	stdout, _, err := runCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no sources registered")
}

func TestInstallAdHocSource(t *testing.T) {
	setupEnv(t)
	source := t.TempDir()
	target := t.TempDir()

	writeSourceFile(t, source, "bashrc.sh", fmt.Sprintf(
		"# :dotsctl:\n# destdir: %s\n# ...\nexport EDITOR=vim\n", target))
	writeSourceFile(t, source, "README", "plain file, no metadata\n")

	stdout, _, err := runCommand(t, "install", source)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 installed")
	assert.Contains(t, stdout, "0 failed")

	// strip_extension defaults to true
	installed, err := os.ReadFile(filepath.Join(target, "bashrc"))
	require.NoError(t, err)
	assert.Contains(t, string(installed), "export EDITOR=vim")
}

func TestInstallUsesRegisteredSources(t *testing.T) {
	setupEnv(t)
	source := t.TempDir()
	target := t.TempDir()

	writeSourceFile(t, source, "gitconfig.ini", fmt.Sprintf(
		"; :dotsctl:\n; dest: %s\n; ...\n[user]\n", filepath.Join(target, "gitconfig")))

	_, _, err := runCommand(t, "add", source)
	require.NoError(t, err)

	stdout, _, err := runCommand(t, "install")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 installed")

	_, err = os.Stat(filepath.Join(target, "gitconfig"))
	assert.NoError(t, err)
}

func TestInstallNoSources(t *testing.T) {
	setupEnv(t)

	_, _, err := runCommand(t, "install")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no sources")
}

func TestInstallDryRun(t *testing.T) {
	setupEnv(t)
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "out")

	writeSourceFile(t, source, "profile.sh", fmt.Sprintf(
		"# :dotsctl:\n# mkdir: %s\n# destdir: %s\n# ...\n", target, target))

	stdout, _, err := runCommand(t, "install", "--dry-run", source)
	require.NoError(t, err)
	assert.Contains(t, stdout, "DRY RUN MODE")

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestInstallFailureExitsNonZero(t *testing.T) {
	setupEnv(t)
	source := t.TempDir()
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")

	writeSourceFile(t, source, "broken.sh", fmt.Sprintf(
		"# :dotsctl:\n# destdir: %s\n# ...\n", missing))

	stdout, _, err := runCommand(t, "install", source)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install")
	assert.Contains(t, stdout, "1 failed")
}

func TestMetaCommand(t *testing.T) {
	setupEnv(t)
	source := t.TempDir()

	path := writeSourceFile(t, source, "vimrc.vim", fmt.Sprintf(
		"\" :dotsctl:\n\" destdir: %s\n\" ...\nset number\n", filepath.Join(source, "out")))

	stdout, _, err := runCommand(t, "meta", source)
	require.NoError(t, err)

	var parsed map[string]*types.Directive
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &parsed))
	require.Contains(t, parsed, path)
	assert.Equal(t, filepath.Join(source, "out"), parsed[path].DestDir)
}

func TestPackagesCommand(t *testing.T) {
	setupEnv(t)
	source := t.TempDir()

	writeSourceFile(t, source, "tools.sh",
		"# :dotsctl:\n# dpkg:\n#   - zsh\n#   - git\n# ...\n")
	writeSourceFile(t, source, "editor.sh",
		"# :dotsctl:\n# dpkg: [vim, git]\n# ...\n")

	stdout, _, err := runCommand(t, "packages", source)
	require.NoError(t, err)
	assert.Equal(t, "git\nvim\nzsh\n", stdout)
}
