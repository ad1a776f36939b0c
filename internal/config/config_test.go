package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("UPDATE_INTERVAL", "")
	t.Setenv("ENABLE_NOTIFICATIONS", "")
}

func TestLoadFullConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), `
version: 1
interval: 30s
notify: false
engines:
  snakemake:
    log: .snakemake/log/latest.log
    process: snakemake
  nextflow:
    log: .nextflow.log
    host: cluster
slurm:
  user: alice
output:
  color: never
  plain: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.False(t, cfg.Notify)
	assert.Equal(t, ".snakemake/log/latest.log", cfg.Engines["snakemake"].Log)
	assert.Equal(t, "snakemake", cfg.Engines["snakemake"].Process)
	assert.Equal(t, "cluster", cfg.Engines["nextflow"].Host)
	assert.Equal(t, "alice", cfg.Slurm.User)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.True(t, cfg.Output.Plain)
}

func TestLoadDefaultsFillGaps(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), "version: 1\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.True(t, cfg.Notify)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interval: [unclosed\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interval: 30s\nnotify: true\n")
	t.Setenv("UPDATE_INTERVAL", "5")
	t.Setenv("ENABLE_NOTIFICATIONS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.False(t, cfg.Notify)
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
		ok   bool
	}{
		{"30", 30 * time.Second, true},
		{"5s", 5 * time.Second, true},
		{"2m", 2 * time.Minute, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseInterval(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"1", "true", "YES", "on"} {
		b, ok := parseBool(raw)
		assert.True(t, ok, raw)
		assert.True(t, b, raw)
	}
	for _, raw := range []string{"0", "false", "No", "OFF"} {
		b, ok := parseBool(raw)
		assert.True(t, ok, raw)
		assert.False(t, b, raw)
	}
	_, ok := parseBool("maybe")
	assert.False(t, ok)
}

func TestFindPrefersLocalOverParent(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "work", "run01")
	require.NoError(t, os.MkdirAll(child, 0o755))
	writeConfig(t, root, "version: 1\n")
	local := writeConfig(t, child, "version: 1\n")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	require.NoError(t, os.Chdir(child))

	found, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, resolved(t, local), resolved(t, found))
}

// resolved normalizes symlinked temp paths before comparing.
func resolved(t *testing.T, path string) string {
	t.Helper()
	p, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return p
}

func TestFindWalksToParent(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "work", "run01")
	require.NoError(t, os.MkdirAll(child, 0o755))
	parent := writeConfig(t, root, "version: 1\n")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	require.NoError(t, os.Chdir(child))

	// Home is elsewhere so the walk doesn't stop early.
	t.Setenv("HOME", filepath.Join(root, "unused-home"))

	found, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, resolved(t, parent), resolved(t, found))
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefaultWithoutAnyConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	require.NoError(t, os.Chdir(dir))
	t.Setenv("HOME", filepath.Join(dir, "home"))

	cfg, err := LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.True(t, cfg.Notify)
}
