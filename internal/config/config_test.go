package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points the user config dir and working directory at empty temp
// dirs so a developer's own rbxbridge.toml does not leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("PORT", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "http://127.0.0.1:9999", cfg.ServerURL)
	require.Equal(t, 5*1024, cfg.BatchBudget)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.False(t, cfg.Debug)
	require.Empty(t, cfg.EditorSecret)
}

func TestLoad_FileEnvAndOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = ":7000"
batch_budget = 1024
editor_secret = "from-file"
allowed_origins = ["http://localhost:3000"]
`), 0o600))

	t.Setenv("RBXBRIDGE_EDITOR_SECRET", "from-env")
	t.Setenv("RBXBRIDGE_URL", "http://bridge.local:7000/")

	debug := true
	cfg, err := Load(path, Overrides{Debug: &debug})
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.Addr)
	require.Equal(t, 1024, cfg.BatchBudget)
	require.Equal(t, "from-env", cfg.EditorSecret)
	require.Equal(t, "http://bridge.local:7000", cfg.ServerURL)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	require.True(t, cfg.Debug)
}

func TestLoad_DiscoversConfigInWorkingDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rbxbridge.toml"), []byte(`log_format = "json"`), 0o600))

	cfg, err := Load("", Overrides{})
	require.NoError(t, err)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_PortEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "8080")

	cfg, err := Load("", Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.toml"), Overrides{})
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	zero := 0
	_, err := Load("", Overrides{BatchBudget: &zero})
	require.ErrorContains(t, err, "batch_budget")

	format := "xml"
	_, err = Load("", Overrides{LogFormat: &format})
	require.ErrorContains(t, err, "log_format")
}
