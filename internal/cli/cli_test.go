package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kvconf/internal/sqlite"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// testEnv is an isolated configuration and data directory pair.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("KVCONF_CONFIG_DIR", "")
	t.Setenv("KVCONF_DATA_DIR", "")
	t.Setenv("KVCONF_LOG_LEVEL", "")

	tmp := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(tmp, "config"),
		dataDir:   filepath.Join(tmp, "data"),
	}
}

// writeConfig writes config.yaml before the first command runs.
func (e *testEnv) writeConfig(content string) {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(e.t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(content), 0o644))
}

type cmdResult struct {
	stdout   string
	stderr   string
	exitCode int
}

func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	all := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	var stdout, stderr bytes.Buffer
	code := Execute(all, &stdout, &stderr)
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), exitCode: code}
}

func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.exitCode, "kvconf %v\nstdout: %s\nstderr: %s", args, r.stdout, r.stderr)
	return r
}

func TestInitCreatesConfigAndDatabase(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("init")
	assert.Contains(t, r.stdout, "kvconf initialized successfully")

	data, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	var cfg types.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, "warn", cfg.LogLevel)

	assert.FileExists(t, filepath.Join(env.dataDir, sqlite.DBFileName))
}

func TestInitKeepsExistingConfig(t *testing.T) {
	env := newTestEnv(t)
	const content = "backend: sqlite\nlog_level: error\n"
	env.writeConfig(content)

	env.mustRun("init")

	data, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSetGetTypes(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		in   string
		out  string
	}{
		{"string default type", "", "secret-key-123", "secret-key-123"},
		{"bool lowercase", "bool", "true", "True"},
		{"bool capitalized false", "bool", "False", "False"},
		{"int", "int", "42", "42"},
		{"negative int", "int", "-42", "-42"},
		{"float", "float", "2.0", "2.0"},
		{"negative float", "float", "-0.5", "-0.5"},
		{"decimal keeps digits", "decimal", "19.990", "19.990"},
		{"negative decimal", "decimal", "-19.990", "-19.990"},
		{"json object", "json", `{"b": 1, "a": [true, "x"]}`, `{"b": 1, "a": [true, "x"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			args := []string{"set", "k"}
			if tt.typ != "" {
				args = append(args, "--type", tt.typ)
			}
			env.mustRun(append(args, "--", tt.in)...)

			r := env.mustRun("get", "k")
			assert.Equal(t, tt.out+"\n", r.stdout)
		})
	}
}

func TestSetRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bool must be strict", []string{"set", "k", "yes", "--type", "bool"}},
		{"int must parse", []string{"set", "k", "4.5", "--type", "int"}},
		{"json must be a container", []string{"set", "k", "42", "--type", "json"}},
		{"unknown type", []string{"set", "k", "v", "--type", "date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := env.run(tt.args...)
			assert.Equal(t, exitUserError, r.exitCode)
			assert.NotEmpty(t, r.stderr)
		})
	}
}

func TestGetMissing(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("get", "nope")
	assert.Equal(t, exitUserError, r.exitCode)
	assert.Contains(t, r.stderr, "key not found")

	r = env.mustRun("get", "nope", "--default", "fallback")
	assert.Equal(t, "fallback\n", r.stdout)

	r = env.mustRun("get", "nope", "--default", "7", "--type", "int", "--json")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, map[string]any{"key": "nope", "type": "int", "value": float64(7)}, got)
}

func TestGetNegativeDefault(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("get", "level", "--type", "int", "--default=-1")
	assert.Equal(t, "-1\n", r.stdout)

	r = env.mustRun("get", "ratio", "--type", "decimal", "--default", "-0.25")
	assert.Equal(t, "-0.25\n", r.stdout)
}

func TestNegativeValueWithoutSeparatorIsAFlagError(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("set", "k", "-42", "--type", "int")
	assert.Equal(t, exitUserError, r.exitCode)
	assert.Contains(t, r.stderr, "unknown shorthand flag")

	env.mustRun("set", "k", "--type", "int", "--", "-42")
	r = env.mustRun("get", "k")
	assert.Equal(t, "-42\n", r.stdout)
}

func TestEmptyKey(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("set", "", "blank")

	r := env.mustRun("get", "")
	assert.Equal(t, "blank\n", r.stdout)

	env.mustRun("delete", "")
	r = env.run("get", "")
	assert.Equal(t, exitUserError, r.exitCode)
}

func TestGetJSONOutput(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("set", "price", "19.99", "--type", "decimal")
	env.mustRun("set", "stats", `{"count": 42, "avg": 3.14}`, "--type", "json")
	env.mustRun("set", "enabled", "True", "--type", "bool")

	r := env.mustRun("--json", "get", "price")
	assert.JSONEq(t, `{"key": "price", "type": "decimal", "value": "19.99"}`, r.stdout)

	r = env.mustRun("--json", "get", "stats")
	assert.JSONEq(t, `{"key": "stats", "type": "json", "value": {"count": 42, "avg": 3.14}}`, r.stdout)

	r = env.mustRun("--json", "get", "enabled")
	assert.JSONEq(t, `{"key": "enabled", "type": "bool", "value": true}`, r.stdout)
}

func TestOverwriteChangesType(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("set", "k", "1", "--type", "int")
	env.mustRun("set", "k", "one")

	r := env.mustRun("--json", "get", "k")
	assert.JSONEq(t, `{"key": "k", "type": "string", "value": "one"}`, r.stdout)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("set", "k", "v")

	r := env.mustRun("delete", "k")
	assert.Equal(t, "Deleted k\n", r.stdout)

	// Deleting again still succeeds.
	env.mustRun("delete", "k")

	r = env.run("get", "k")
	assert.Equal(t, exitUserError, r.exitCode)
}

func TestDataDirFromConfig(t *testing.T) {
	env := newTestEnv(t)
	configured := filepath.Join(t.TempDir(), "from-config")
	env.writeConfig("backend: sqlite\ndata_dir: " + configured + "\n")

	var stdout, stderr bytes.Buffer
	code := Execute([]string{"--config-dir", env.configDir, "set", "k", "v"}, &stdout, &stderr)
	require.Equal(t, exitSuccess, code, stderr.String())

	assert.FileExists(t, filepath.Join(configured, sqlite.DBFileName))
}

func TestBadgerBackendFromConfig(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig("backend: badger\n")

	env.mustRun("set", "limit", "10", "--type", "int")
	r := env.mustRun("get", "limit")
	assert.Equal(t, "10\n", r.stdout)
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    int
	}{
		{"unknown backend", "backend: cassandra\n", exitUserError},
		{"redis without address", "backend: redis\n", exitUserError},
		{"malformed yaml", "backend: [sqlite\n", exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.writeConfig(tt.content)

			r := env.run("get", "k")
			assert.Equal(t, tt.code, r.exitCode, r.stderr)
		})
	}
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"version"}, &stdout, &stderr)
	require.Equal(t, exitSuccess, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "kvconf v"))
	assert.Contains(t, stdout.String(), modulePath)
}
