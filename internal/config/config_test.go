package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	require.NoError(t, os.Unsetenv("AAMI_CONFIG_SERVER_URL"))
	require.NoError(t, os.Unsetenv("AAMI_SERVER_URL"))

	cfg, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Server.URL)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "/var/lib/node_exporter/textfile_collector", cfg.Checks.TextfileDir)
	assert.Equal(t, "/usr/local/lib/aami/checks", cfg.Checks.ScriptDir)
	assert.Equal(t, 30*time.Second, cfg.Checks.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Checks.Hostname, "hostname should be auto-detected")
}

func TestLoad_LegacyEnvFile(t *testing.T) {
	require.NoError(t, os.Unsetenv("AAMI_CONFIG_SERVER_URL"))
	t.Cleanup(func() { _ = os.Unsetenv("AAMI_CONFIG_SERVER_URL") })

	envFile := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(envFile, []byte("AAMI_CONFIG_SERVER_URL=\"http://config-server:8080\"\n"), 0o644))

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "http://config-server:8080", cfg.Server.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AAMI_CONFIG_SERVER_URL", "http://env-wins:8080")
	t.Setenv("AAMI_HOSTNAME", "node-42")
	t.Setenv("AAMI_CHECK_TIMEOUT", "45s")

	cfg, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	assert.Equal(t, "http://env-wins:8080", cfg.Server.URL)
	assert.Equal(t, "node-42", cfg.Checks.Hostname)
	assert.Equal(t, 45*time.Second, cfg.Checks.Timeout)
}

func TestLoad_EnvBeatsEnvFile(t *testing.T) {
	t.Setenv("AAMI_CONFIG_SERVER_URL", "http://real-env:8080")

	envFile := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(envFile, []byte("AAMI_CONFIG_SERVER_URL=http://file:8080\n"), 0o644))

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "http://real-env:8080", cfg.Server.URL)
}

func TestLoad_YAMLConfigFile(t *testing.T) {
	require.NoError(t, os.Unsetenv("AAMI_CONFIG_SERVER_URL"))

	configFile := filepath.Join(t.TempDir(), "aami.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
server:
  url: http://from-yaml:8080
  timeout: 10s
checks:
  hostname: yaml-node
  timeout: 5s
logging:
  level: debug
`), 0o644))

	cfg, err := Load(Options{ConfigFile: configFile, EnvFile: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	assert.Equal(t, "http://from-yaml:8080", cfg.Server.URL)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "yaml-node", cfg.Checks.Hostname)
	assert.Equal(t, 5*time.Second, cfg.Checks.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MalformedYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "aami.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server: [unclosed"), 0o644))

	_, err := Load(Options{ConfigFile: configFile, EnvFile: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
