package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Task func(ctx context.Context) error

// Job is a named task run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Task     Task
}

// Run starts every job and blocks until ctx is done and all jobs have
// returned. Jobs with a non-positive interval are skipped.
func Run(ctx context.Context, jobs ...Job) {
	var wg sync.WaitGroup
	for _, j := range jobs {
		if j.Interval <= 0 || j.Task == nil {
			slog.Debug("scheduled job disabled", "task", j.Name)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			Every(ctx, j.Interval, j.Name, j.Task)
		}()
	}
	wg.Wait()
}

// Every runs task immediately and then on each tick until ctx is done.
// Task errors are logged, never fatal. Runs never overlap.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		start := time.Now()
		err := task(ctx)
		switch {
		case err == nil:
			slog.Debug("scheduled task done", "task", name, "dur_ms", time.Since(start).Milliseconds())
		case !errors.Is(err, context.Canceled):
			slog.Warn("scheduled task failed", "task", name, "err", err)
		}
	}

	run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
