package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"scorecard/internal/checks"
)

type Scheduler struct {
	concurrency int
	logger      *slog.Logger
}

func NewScheduler(concurrency int, logger *slog.Logger) (*Scheduler, error) {
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{concurrency: concurrency, logger: logger}, nil
}

type job struct {
	target *TargetPlan
	check  checks.Check
	result checks.Result
	done   chan struct{}
}

// Execute evaluates every (target, check) pair of plan with at most
// s.concurrency evaluations in flight and passes each result to emit in plan
// order (targets outer, checks inner), as soon as it and all earlier results
// are available.
//
// Evaluation faults and cancellation become ERROR results, so emit is called
// exactly once per pair. The first error returned by emit is returned after
// all evaluations have finished.
func (s *Scheduler) Execute(ctx context.Context, plan *RunPlan, emit func(checks.Result) error) error {
	if ctx == nil {
		return errors.New("context is nil")
	}
	if s == nil {
		return errors.New("scheduler is nil")
	}
	if plan == nil {
		return errors.New("run plan is nil")
	}

	jobs := make([]*job, 0, plan.Size())
	for _, tp := range plan.Targets {
		for _, c := range plan.Checks {
			jobs = append(jobs, &job{target: tp, check: c, done: make(chan struct{})})
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for _, j := range jobs {
			g.Go(func() error {
				defer close(j.done)
				j.result = s.evaluate(ctx, j.target, j.check)
				return nil
			})
		}
		_ = g.Wait()
	}()

	var emitErr error
	for _, j := range jobs {
		<-j.done
		if emitErr != nil {
			continue
		}
		emitErr = emit(j.result)
	}
	<-launched
	return emitErr
}

func (s *Scheduler) evaluate(ctx context.Context, tp *TargetPlan, c checks.Check) checks.Result {
	if tp.Err != nil {
		return checks.Result{CheckID: c.ID(), Repo: tp.Name, Status: checks.StatusError, Message: tp.Err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return checks.ErrorResult(tp.Target, c.ID(), fmt.Sprintf("Evaluation skipped: %v", err))
	}

	start := time.Now()
	res, err := c.Evaluate(ctx, tp.Target)
	elapsed := time.Since(start).Truncate(time.Microsecond)
	if err != nil {
		s.logger.Debug("check failed to evaluate", "check", c.ID(), "target", tp.Name, "elapsed", elapsed, "error", err)
		return checks.ErrorResult(tp.Target, c.ID(), fmt.Sprintf("Evaluation failed: %v", err))
	}
	s.logger.Debug("check evaluated", "check", c.ID(), "target", tp.Name, "status", res.Status, "elapsed", elapsed)

	// Checks usually care about status and message; stamp identifiers here.
	if res.Repo == "" {
		res.Repo = tp.Name
	}
	if res.CheckID == "" {
		res.CheckID = c.ID()
	}
	if res.Status == "" {
		res.Status = checks.StatusError
		res.Message = "check returned no status"
	}
	return res
}
