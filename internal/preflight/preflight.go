// Package preflight validates node requirements before the check runner is
// installed, so installs do not fail halfway through.
package preflight

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Status is the outcome class of a single preflight check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
	StatusInfo Status = "info"
)

// Result is the outcome of one preflight check.
type Result struct {
	Check   string `json:"check"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Pinger probes config-server reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything preflight checks inspect.
type Deps struct {
	TextfileDir string
	ScriptDir   string
	Hostname    string
	// Pinger is nil when no config-server URL is configured.
	Pinger Pinger
}

// Check is a single preflight validation.
type Check interface {
	// ID returns the unique identifier (e.g. "dirs:textfile").
	ID() string

	// Run executes the check.
	Run(ctx context.Context, deps *Deps) Result
}

// Report aggregates the results of one preflight run.
type Report struct {
	Timestamp string   `json:"timestamp"`
	Passed    bool     `json:"passed"`
	Results   []Result `json:"checks"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Run executes the checks in order and aggregates them. A fail marks the
// whole report failed; warns are collected but do not.
func Run(ctx context.Context, checks []Check, deps *Deps, log zerolog.Logger) Report {
	report := Report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Passed:    true,
	}

	for _, check := range checks {
		res := check.Run(ctx, deps)
		log.Debug().Str("check", res.Check).Str("status", string(res.Status)).Str("message", res.Message).Msg("preflight check")
		report.Results = append(report.Results, res)

		switch res.Status {
		case StatusFail:
			report.Passed = false
			report.Errors = append(report.Errors, res.Check+": "+res.Message)
		case StatusWarn:
			report.Warnings = append(report.Warnings, res.Check+": "+res.Message)
		}
	}
	return report
}
