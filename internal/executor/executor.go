// Package executor runs one check script as a child process bounded by a
// timeout and classifies the outcome.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/fregataa/aami-check-runner/internal/client"
)

// Result is the outcome of a single check execution.
type Result struct {
	Name      string
	Succeeded bool
	// Stdout is the metric payload on success. On failure it is retained
	// for logging only and never published.
	Stdout   string
	Stderr   string
	Err      string
	TimedOut bool
	Duration time.Duration
}

// Runner executes check scripts.
type Runner struct {
	log zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log}
}

// Run invokes the script with no arguments, the config serialized as compact
// JSON on stdin and nothing passed through the environment. Exit code 0 is
// the sole success signal. On timeout the child is killed; there is no retry
// within a run.
func (r *Runner) Run(ctx context.Context, name, scriptPath string, config *client.Value, timeout time.Duration) Result {
	start := time.Now()

	if config == nil {
		config = client.EmptyMapping()
	}
	cfgJSON, err := json.Marshal(config)
	if err != nil {
		return Result{Name: name, Err: fmt.Sprintf("serializing config: %v", err), Duration: time.Since(start)}
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, scriptPath)
	cmd.Stdin = bytes.NewReader(cfgJSON)
	// Stop waiting on the output pipes if a killed script leaves children
	// behind that still hold them open.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug().Str("check", name).Str("script", scriptPath).RawJSON("config", cfgJSON).Msg("executing check")

	runErr := cmd.Run()
	res := Result{
		Name:     name,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case runErr == nil:
		res.Succeeded = true
	case cctx.Err() == context.DeadlineExceeded:
		res.TimedOut = true
		res.Err = fmt.Sprintf("timed out after %s", timeout)
	default:
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			res.Err = fmt.Sprintf("exit code %d", exitErr.ExitCode())
		} else {
			res.Err = fmt.Sprintf("spawn failed: %v", runErr)
		}
	}
	return res
}
