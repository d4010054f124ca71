package commands

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fregataa/aami-check-runner/cmd/aami-check/internal/clierr"
	"github.com/fregataa/aami-check-runner/internal/metrics"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AAMI_LOG_FILE", filepath.Join(dir, "aami.log"))
	t.Setenv("AAMI_LOG_LEVEL", "error")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "preflight")
	assert.Contains(t, names, "install-exporter")
	assert.Contains(t, names, "version")
}

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "aami-check version")
}

func TestRunCmd_EmptyCheckList(t *testing.T) {
	setTestEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	textfileDir := t.TempDir()
	root := NewRootCmd()
	root.SetArgs([]string{
		"run",
		"--config-server", srv.URL,
		"--hostname", "test-node",
		"--textfile-dir", textfileDir,
		"--check-scripts-dir", t.TempDir(),
	})

	require.NoError(t, root.Execute())

	summary, err := os.ReadFile(filepath.Join(textfileDir, metrics.SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "aami_check_fetch_status 1\n")
	assert.Contains(t, string(summary), "aami_checks_total 0\n")
}

func TestRunCmd_FetchFailureExitsNonzero(t *testing.T) {
	setTestEnv(t)
	textfileDir := t.TempDir()

	root := NewRootCmd()
	root.SetArgs([]string{
		"run",
		"--config-server", "http://127.0.0.1:1",
		"--hostname", "test-node",
		"--textfile-dir", textfileDir,
		"--check-scripts-dir", t.TempDir(),
	})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, 1, clierr.ExitCodeOf(err))

	summary, err := os.ReadFile(filepath.Join(textfileDir, metrics.SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "aami_check_fetch_status 0\n")
	assert.Contains(t, string(summary), "aami_checks_total 0\n")
}

func TestRunCmd_MissingServerURL(t *testing.T) {
	setTestEnv(t)
	t.Setenv("AAMI_CONFIG_SERVER_URL", "")
	textfileDir := t.TempDir()

	root := NewRootCmd()
	root.SetArgs([]string{
		"run",
		"--textfile-dir", textfileDir,
		"--check-scripts-dir", t.TempDir(),
	})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, 1, clierr.ExitCodeOf(err))

	// A failure summary is still published for the scraper.
	summary, err := os.ReadFile(filepath.Join(textfileDir, metrics.SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "aami_check_fetch_status 0\n")
}
