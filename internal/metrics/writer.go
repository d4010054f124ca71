// Package metrics publishes check results as Prometheus textfile-collector
// files. Metric names and the exposition layout are a stable external
// contract consumed by node_exporter; they are rendered byte for byte here.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// RunSummary is the run-level outcome published to aami_status.prom.
type RunSummary struct {
	FetchSucceeded  bool
	Total           int
	Succeeded       int
	Failed          int
	DurationSeconds int64
	Timestamp       int64
}

// SummaryFile is the aggregate status file name within the textfile dir.
const SummaryFile = "aami_status.prom"

// Writer publishes metric files into the textfile collector directory.
type Writer struct {
	dir string
	log zerolog.Logger
}

// NewWriter creates a writer targeting dir. The directory is created if
// missing so a first run on a fresh node can publish.
func NewWriter(dir string, log zerolog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating textfile dir: %w", err)
	}
	return &Writer{dir: dir, log: log}, nil
}

// Publish writes content to <name>.prom. The write goes to a temporary path
// first and is renamed onto the target, so a scraper polling the directory
// sees either the previous complete file or the new one, never a partial.
func (w *Writer) Publish(name, content string) error {
	return w.atomicWrite(name+".prom", content)
}

// PublishSummary writes the six fixed run-level gauges, with the same
// rename discipline as per-check files.
func (w *Writer) PublishSummary(s RunSummary) error {
	fetchStatus := 0
	if s.FetchSucceeded {
		fetchStatus = 1
	}

	var b strings.Builder
	writeGauge(&b, "aami_check_fetch_status", "Check fetch status (1=success, 0=failed)", int64(fetchStatus))
	b.WriteString("\n")
	writeGauge(&b, "aami_check_fetch_timestamp_seconds", "Last check fetch timestamp", s.Timestamp)
	b.WriteString("\n")
	writeGauge(&b, "aami_check_execution_duration_seconds", "Check execution duration", s.DurationSeconds)
	b.WriteString("\n")
	writeGauge(&b, "aami_checks_total", "Total number of checks configured", int64(s.Total))
	b.WriteString("\n")
	writeGauge(&b, "aami_checks_success", "Number of successful checks", int64(s.Succeeded))
	b.WriteString("\n")
	writeGauge(&b, "aami_checks_failed", "Number of failed checks", int64(s.Failed))

	return w.atomicWrite(SummaryFile, b.String())
}

// ErrorMetric renders the fixed-shape error block published for a failed
// check. Arbitrary script output never reaches the exposition format on the
// failure path; only this block does.
func ErrorMetric(check string) string {
	return fmt.Sprintf(`# HELP aami_check_error Check execution error (1=error)
# TYPE aami_check_error gauge
aami_check_error{check="%s"} 1
`, escapeLabel(check))
}

func writeGauge(b *strings.Builder, name, help string, value int64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %d\n", name, value)
}

func (w *Writer) atomicWrite(filename, content string) error {
	final := filepath.Join(w.dir, filename)
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publishing %s: %w", filename, err)
	}
	w.log.Debug().Str("file", final).Msg("published metric file")
	return nil
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string {
	return labelEscaper.Replace(v)
}
