package controller

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is one blocking operation produced by Step. Jobs never touch the
// tree; they return a Result that Apply folds in on the owning goroutine.
type Job struct {
	Name         string
	ConnectionID string
	timeout      time.Duration
	run          func(ctx context.Context) Result
}

// Result is the outcome of a Job
type Result struct {
	Job          string
	ConnectionID string
	Err          error
	apply        func(c *Controller)
}

// Run executes jobs concurrently, bounded by the configured fetch
// limit, each under its own timeout. Results keep the order of jobs.
func (c *Controller) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	var g errgroup.Group
	if n := c.cfg.Performance.MaxConcurrentFetches; n > 0 {
		g.SetLimit(n)
	}
	for i, job := range jobs {
		g.Go(func() error {
			timeout := job.timeout
			if timeout <= 0 {
				timeout = c.cfg.Performance.QueryTimeoutDuration()
			}
			jctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			res := job.run(jctx)
			res.Job = job.Name
			res.ConnectionID = job.ConnectionID
			c.logger.Debug("job finished",
				"job", job.Name,
				"connection", job.ConnectionID,
				"duration", time.Since(start),
				"error", res.Err)
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Apply folds results into the tree. Failed results are logged and
// the last one becomes LastError.
func (c *Controller) Apply(results []Result) {
	for _, r := range results {
		if r.Err != nil {
			c.logger.Error("job failed", "job", r.Job, "connection", r.ConnectionID, "error", r.Err)
			c.lastErr = r.Err
		}
		if r.apply != nil {
			r.apply(c)
		}
	}
}

// RunAndApply drives one full cycle synchronously
func (c *Controller) RunAndApply(ctx context.Context) {
	for jobs := c.Step(); len(jobs) > 0; jobs = c.Step() {
		c.Apply(c.Run(ctx, jobs))
	}
}
