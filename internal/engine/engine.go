package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"scorecard/internal/checks"
	"scorecard/internal/config"
	gh "scorecard/internal/github"
	"scorecard/internal/output"
)

// Exit codes. Anything other than an all-PASS run, including a run that
// could not start, exits 1.
const (
	ExitPass = 0
	ExitFail = 1
)

type Engine struct {
	// Client reads GitHub targets. It may be nil for local-only runs.
	Client *gh.Client

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func NewEngine(client *gh.Client) *Engine {
	return &Engine{
		Client: client,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func (e *Engine) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Engine) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Engine) setupOutputManager(cfg *config.Config, labeled bool) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		cs, err := output.NewConsoleSink(e.stdout(), e.stderr(), output.ConsoleOptions{
			Format:         cfg.Output.ConsoleFormat,
			FilterStatuses: cfg.Output.ConsoleFilterStatus,
			Labeled:        labeled,
		})
		if err != nil {
			return nil, err
		}
		if err := outMgr.AddSink(cs); err != nil {
			return nil, err
		}
	}

	// Additional structured streams on stdout.
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(e.stdout(), emit)
		if err != nil {
			_ = outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			_ = outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			_ = outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			_ = outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// applyCheckOptions routes --set values ("checkID.option=value") to the
// Configure method of the named check.
//
// Example:
//
//	scorecard run license --set license.min-chars=200
func applyCheckOptions(cfg *config.Config) error {
	if len(cfg.Checks.Set) == 0 {
		return nil
	}

	assignments, err := config.ParseCheckOptionAssignments(cfg.Checks.Set)
	if err != nil {
		return err
	}

	for checkID, opts := range assignments {
		c, ok := checks.Lookup(checkID)
		if !ok {
			return fmt.Errorf("unknown check ID %q", checkID)
		}
		cc, ok := c.(checks.ConfigurableCheck)
		if !ok {
			return fmt.Errorf("check %q does not support options", checkID)
		}

		allowed := make(map[string]struct{})
		for _, opt := range cc.Options() {
			allowed[opt.Name] = struct{}{}
		}
		for name := range opts {
			if _, ok := allowed[name]; !ok {
				return fmt.Errorf("unknown option %q for check %q", name, checkID)
			}
		}

		if err := cc.Configure(opts); err != nil {
			return fmt.Errorf("configure check %q: %w", checkID, err)
		}
	}
	return nil
}

func (e *Engine) fatal(format string, args ...any) int {
	fmt.Fprintf(e.stderr(), format+"\n", args...)
	return ExitFail
}

// Run evaluates the configured checks against every target and writes the
// results to the configured sinks. It returns ExitPass only when every result
// is PASS.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	if cfg == nil {
		return e.fatal("Error: config is nil")
	}
	log := e.logger()

	if cfg.Runtime.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Runtime.Timeout)
		defer cancel()
	}

	selected, err := checks.Resolve(cfg.Checks.Selector)
	if err != nil {
		return e.fatal("Error resolving checks: %v", err)
	}
	if err := applyCheckOptions(cfg); err != nil {
		return e.fatal("Error configuring checks: %v", err)
	}

	plan, err := BuildPlan(ctx, cfg, selected, e.Client)
	if err != nil {
		return e.fatal("Error planning run: %v", err)
	}
	log.Debug("run planned", "targets", len(plan.Targets), "checks", len(plan.Checks))

	scheduler, err := NewScheduler(cfg.Runtime.Concurrency, log)
	if err != nil {
		return e.fatal("Error: %v", err)
	}

	outMgr, err := e.setupOutputManager(cfg, plan.Size() > 1)
	if err != nil {
		return e.fatal("Error creating output sinks: %v", err)
	}

	_ = outMgr.Write(output.Event{Type: output.EventRunStarted, Targets: len(plan.Targets), Checks: len(plan.Checks)})

	var writeErr error
	execErr := scheduler.Execute(ctx, plan, func(r checks.Result) error {
		if err := outMgr.Write(r); err != nil && writeErr == nil {
			writeErr = err
		}
		return nil
	})

	tally := outMgr.Tally()
	code := tally.ExitCode()
	if execErr != nil || writeErr != nil {
		code = ExitFail
	}
	_ = outMgr.Write(output.Event{Type: output.EventRunFinished, ExitCode: code})
	closeErr := outMgr.Close()

	for _, err := range []error{execErr, writeErr, closeErr} {
		if err != nil {
			fmt.Fprintf(e.stderr(), "Error: %v\n", err)
			code = ExitFail
		}
	}
	log.Debug("run finished", "pass", tally.Pass, "fail", tally.Fail, "error", tally.Error, "exit_code", code)
	return code
}
