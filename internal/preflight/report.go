package preflight

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	passTag = color.New(color.FgGreen).SprintFunc()
	failTag = color.New(color.FgRed).SprintFunc()
	warnTag = color.New(color.FgYellow).SprintFunc()
	infoTag = color.New(color.FgCyan).SprintFunc()
)

// Render writes a human-readable report to w.
func (r Report) Render(w io.Writer) {
	for _, res := range r.Results {
		fmt.Fprintf(w, "%s %-24s %s\n", tag(res.Status), res.Check, res.Message)
	}
	fmt.Fprintln(w)
	if r.Passed {
		fmt.Fprintf(w, "%s preflight passed (%d warnings)\n", passTag("[PASS]"), len(r.Warnings))
	} else {
		fmt.Fprintf(w, "%s preflight failed: %d errors, %d warnings\n", failTag("[FAIL]"), len(r.Errors), len(r.Warnings))
	}
}

// RenderJSON writes the report as indented JSON to w.
func (r Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func tag(s Status) string {
	switch s {
	case StatusPass:
		return passTag("[PASS]")
	case StatusFail:
		return failTag("[FAIL]")
	case StatusWarn:
		return warnTag("[WARN]")
	default:
		return infoTag("[INFO]")
	}
}
