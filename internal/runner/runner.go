// Package runner orchestrates one end-to-end check run:
// fetch -> cache -> execute -> publish -> summarize.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fregataa/aami-check-runner/internal/client"
	"github.com/fregataa/aami-check-runner/internal/executor"
	"github.com/fregataa/aami-check-runner/internal/metrics"
)

// Fetcher retrieves the check definitions applicable to a host.
type Fetcher interface {
	FetchChecks(ctx context.Context, hostname string) ([]client.CheckDefinition, error)
}

// ScriptCache persists a definition's script body and returns the path of
// the current executable version.
type ScriptCache interface {
	EnsureCurrent(def client.CheckDefinition) (string, error)
}

// Executor runs one check script under a timeout.
type Executor interface {
	Run(ctx context.Context, name, scriptPath string, config *client.Value, timeout time.Duration) executor.Result
}

// MetricsSink publishes per-check metric files and the run summary.
type MetricsSink interface {
	Publish(name, content string) error
	PublishSummary(s metrics.RunSummary) error
}

// Options are the run-level knobs of a Coordinator.
type Options struct {
	Hostname     string
	CheckTimeout time.Duration
}

// Coordinator drives a single run. Checks execute sequentially in the order
// received; each check's metrics are published as soon as it finishes so a
// long run surfaces partial results incrementally.
type Coordinator struct {
	fetcher Fetcher
	cache   ScriptCache
	exec    Executor
	sink    MetricsSink
	opts    Options
	log     zerolog.Logger
	now     func() time.Time
}

// New wires a Coordinator from its collaborators.
func New(fetcher Fetcher, cache ScriptCache, exec Executor, sink MetricsSink, opts Options, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		fetcher: fetcher,
		cache:   cache,
		exec:    exec,
		sink:    sink,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

// Run performs one invocation. A fetch failure short-circuits: a zeroed
// summary is published and the error returned. Individual check failures are
// converted into error metrics and counted; they never fail the run.
func (c *Coordinator) Run(ctx context.Context) error {
	log := c.log.With().Str("run_id", uuid.NewString()).Logger()
	start := c.now()

	log.Info().Str("hostname", c.opts.Hostname).Msg("starting check run")

	defs, err := c.fetcher.FetchChecks(ctx, c.opts.Hostname)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch effective checks")
		c.publishSummary(log, metrics.RunSummary{
			FetchSucceeded:  false,
			DurationSeconds: int64(c.now().Sub(start).Seconds()),
			Timestamp:       c.now().Unix(),
		})
		return err
	}

	succeeded, failed := 0, 0
	for _, def := range defs {
		log.Info().Str("check", def.Name).Msg("processing check")
		if c.runOne(ctx, log, def) {
			succeeded++
		} else {
			failed++
		}
	}

	summary := metrics.RunSummary{
		FetchSucceeded:  true,
		Total:           len(defs),
		Succeeded:       succeeded,
		Failed:          failed,
		DurationSeconds: int64(c.now().Sub(start).Seconds()),
		Timestamp:       c.now().Unix(),
	}
	c.publishSummary(log, summary)

	log.Info().
		Int("total", summary.Total).
		Int("success", summary.Succeeded).
		Int("failed", summary.Failed).
		Int64("duration_seconds", summary.DurationSeconds).
		Msg("check run completed")
	return nil
}

// runOne caches, executes and publishes a single check, reporting success.
func (c *Coordinator) runOne(ctx context.Context, log zerolog.Logger, def client.CheckDefinition) bool {
	scriptPath, err := c.cache.EnsureCurrent(def)
	if err != nil {
		log.Error().Err(err).Str("check", def.Name).Msg("failed to persist check script")
		c.publishCheck(log, def.Name, metrics.ErrorMetric(def.Name))
		return false
	}

	res := c.exec.Run(ctx, def.Name, scriptPath, def.Config, c.opts.CheckTimeout)
	if !res.Succeeded {
		ev := log.Error().Str("check", def.Name).Str("cause", res.Err)
		if res.Stderr != "" {
			ev = ev.Str("stderr", res.Stderr)
		}
		ev.Msg("check failed")
		c.publishCheck(log, def.Name, metrics.ErrorMetric(def.Name))
		return false
	}

	log.Info().Str("check", def.Name).Dur("duration", res.Duration).Msg("check completed")
	c.publishCheck(log, def.Name, res.Stdout)
	return true
}

func (c *Coordinator) publishCheck(log zerolog.Logger, name, content string) {
	if err := c.sink.Publish(name, content); err != nil {
		// The scraper keeps serving the previous file; nothing to do but log.
		log.Error().Err(err).Str("check", name).Msg("failed to publish check metrics")
	}
}

func (c *Coordinator) publishSummary(log zerolog.Logger, s metrics.RunSummary) {
	if err := c.sink.PublishSummary(s); err != nil {
		log.Error().Err(err).Msg("failed to publish run summary")
	}
}
