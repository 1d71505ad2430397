package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalHostRunCommand(t *testing.T) {
	host := NewLocalHost(t.TempDir())
	ctx := context.Background()

	res, err := host.RunCommand(ctx, "sh", []string{"-c", `printf '%s' "$GREETING"; echo oops >&2`}, map[string]string{"GREETING": "hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)

	res, err = host.RunCommand(ctx, "sh", []string{"-c", "exit 3"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)

	_, err = host.RunCommand(ctx, "definitely-not-a-binary-xyz", nil, nil)
	assert.Error(t, err)
}

func TestLocalHostRunsInWorkspace(t *testing.T) {
	dir := t.TempDir()
	host := NewLocalHost(dir)

	res, err := host.RunCommand(context.Background(), "sh", []string{"-c", "mkdir -p output && echo body > output/a.md && ls -1 output"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a.md\n", res.Stdout)
	assert.FileExists(t, filepath.Join(dir, "output", "a.md"))
}

func TestLocalHostReadFile(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "work")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "output"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "output", "a.md"), []byte("# A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("nope"), 0o644))

	host := NewLocalHost(dir)
	data, err := host.ReadFile(context.Background(), "output/a.md")
	require.NoError(t, err)
	assert.Equal(t, "# A", string(data))

	_, err = host.ReadFile(context.Background(), "../secret.txt")
	assert.Error(t, err)
}

func TestLocalHostStopRemovesWorkspace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "work")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	host := NewLocalHost(dir)
	assert.NotEmpty(t, host.ID())

	require.NoError(t, host.Stop(context.Background()))
	assert.NoDirExists(t, dir)
}

func TestLocalProvisionerRequiresURL(t *testing.T) {
	_, err := (&LocalProvisioner{BaseDir: t.TempDir()}).Create(context.Background(), Source{})
	assert.Error(t, err)
}

func TestLocalProvisionerCleansUpFailedClone(t *testing.T) {
	base := t.TempDir()
	p := &LocalProvisioner{Git: "false", BaseDir: base}

	_, err := p.Create(context.Background(), Source{URL: "https://example.invalid/repo.git"})
	require.Error(t, err)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
