package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/api"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("PORT", "")
	t.Setenv("RBXBRIDGE_TOKEN", "")
	t.Setenv("RBXBRIDGE_EDITOR_SECRET", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func newTestBridge(t *testing.T) (*bridge.Bridge, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := bridge.New()
	srv := httptest.NewServer(api.NewRouter(b, api.RouterOptions{}))
	t.Cleanup(srv.Close)
	return b, srv.URL
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExecQueuesFile(t *testing.T) {
	dir := isolate(t)
	b, url := newTestBridge(t)
	b.Register("Baseplate", 42)

	path := filepath.Join(dir, "hello.lua")
	require.NoError(t, os.WriteFile(path, []byte(`print("hello")`), 0o600))

	stdout, _, err := executeCLI(t, "--server", url, "exec", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "hello.lua (14 bytes)")

	jobs, err := b.Drain(bridge.ContextEdit, ptr(int64(42)))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, `print("hello")`, jobs[0].Code)
}

func TestExecReadsStdin(t *testing.T) {
	isolate(t)
	b, url := newTestBridge(t)

	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("print(1)"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--server", url, "exec", "-"})
	require.NoError(t, cmd.Execute())

	jobs, err := b.Drain(bridge.ContextEdit, nil)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "stdin", jobs[0].File)
}

func TestServerURLFromEnv(t *testing.T) {
	isolate(t)
	b, url := newTestBridge(t)
	b.Register("Baseplate", 42)
	t.Setenv("RBXBRIDGE_URL", url)

	stdout, _, err := executeCLI(t, "places")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Baseplate (42)")
}

func TestPlacesAndTarget(t *testing.T) {
	isolate(t)
	b, url := newTestBridge(t)
	b.Register("Baseplate", 1)
	b.Register("Obby", 2)

	stdout, _, err := executeCLI(t, "--server", url, "places")
	require.NoError(t, err)
	assert.Contains(t, stdout, "registered: 2")
	assert.Contains(t, stdout, "* Baseplate (1)")
	assert.Contains(t, stdout, "Obby (2)")

	stdout, _, err = executeCLI(t, "--server", url, "target", "place", "next")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Obby (2)")
	require.Equal(t, int64(2), *b.Snapshot().TargetPlaceID)

	_, _, err = executeCLI(t, "--server", url, "target", "place", "none")
	require.NoError(t, err)
	require.Nil(t, b.Snapshot().TargetPlaceID)

	_, _, err = executeCLI(t, "--server", url, "target", "place", "1")
	require.NoError(t, err)
	require.Equal(t, int64(1), *b.Snapshot().TargetPlaceID)

	_, _, err = executeCLI(t, "--server", url, "target", "place", "abc")
	require.ErrorContains(t, err, "invalid place id")
}

func TestTargetContext(t *testing.T) {
	isolate(t)
	b, url := newTestBridge(t)
	b.Register("Baseplate", 1)
	b.ReportActivity(1, bridge.ContextServer, true)
	b.ReportActivity(1, bridge.ContextClient, true)

	stdout, _, err := executeCLI(t, "--server", url, "target", "context", "server")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Server")
	require.Equal(t, bridge.ContextServer, b.TargetContext())

	_, _, err = executeCLI(t, "--server", url, "target", "context", "next")
	require.NoError(t, err)
	require.Equal(t, bridge.ContextClient, b.TargetContext())

	_, _, err = executeCLI(t, "--server", url, "target", "context", "plugin")
	require.ErrorContains(t, err, "unknown context")
}

func TestStatus(t *testing.T) {
	isolate(t)
	b, url := newTestBridge(t)
	b.Register("Baseplate", 1)
	b.Execute("print(1)", "a.lua")

	stdout, _, err := executeCLI(t, "--server", url, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Baseplate (1)")
	assert.Contains(t, stdout, "queued: Edit=1")

	stdout, _, err = executeCLI(t, "--server", url, "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"TargetPlaceId": 1`)
}

func TestTokenCommand(t *testing.T) {
	isolate(t)
	t.Setenv("RBXBRIDGE_EDITOR_SECRET", "s3cret")

	stdout, _, err := executeCLI(t, "token", "--editor", "vscode", "--ttl", "1h")
	require.NoError(t, err)

	m, err := crypto.NewJWTManager("s3cret")
	require.NoError(t, err)
	claims, err := m.VerifyToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "vscode", claims.Editor)
}

func TestTokenCommandNeedsSecret(t *testing.T) {
	isolate(t)
	_, _, err := executeCLI(t, "token")
	require.ErrorContains(t, err, "no editor secret")
}

func TestDebouncer(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	d := newDebouncer(100*time.Millisecond, func() time.Time { return now })

	require.True(t, d.allow())
	now = now.Add(50 * time.Millisecond)
	require.False(t, d.allow())
	now = now.Add(100 * time.Millisecond)
	require.True(t, d.allow())
}

func ptr[T any](v T) *T { return &v }
