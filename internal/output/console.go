package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"scorecard/internal/checks"
)

// ConsoleSink writes results for humans or machines to the terminal.
//
// In text mode passing results go to stdout and everything else to stderr.
// With a single result the message is printed as is; with Labeled set each
// result gets a colored "[STATUS] target check" header and an indented
// message. json and ndjson go to stdout.
type ConsoleSink struct {
	stdout          io.Writer
	stderr          io.Writer
	labeled         bool
	mu              sync.Mutex
	enc             *structured // json and ndjson
	allowedStatuses map[string]bool
}

type ConsoleOptions struct {
	Format         string
	FilterStatuses []string
	Labeled        bool
}

func NewConsoleSink(stdout, stderr io.Writer, opts ConsoleOptions) (*ConsoleSink, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	format := opts.Format
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		stdout:  stdout,
		stderr:  stderr,
		labeled: opts.Labeled,
	}

	switch format {
	case "text":
	case "json", "ndjson":
		enc, err := newStructured(stdout, format)
		if err != nil {
			return nil, err
		}
		s.enc = enc
	default:
		return nil, fmt.Errorf("unsupported console format: %s", format)
	}

	if len(opts.FilterStatuses) > 0 {
		s.allowedStatuses = make(map[string]bool)
		for _, st := range opts.FilterStatuses {
			s.allowedStatuses[strings.ToUpper(st)] = true
		}
	}

	return s, nil
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

var statusColors = map[checks.Status]*color.Color{
	checks.StatusPass:  color.New(color.FgGreen, color.Bold),
	checks.StatusFail:  color.New(color.FgRed, color.Bold),
	checks.StatusError: color.New(color.FgYellow, color.Bold),
}

func statusLabel(st checks.Status) string {
	label := "[" + string(st) + "]"
	if c, ok := statusColors[st]; ok {
		return c.Sprint(label)
	}
	return label
}

func (s *ConsoleSink) writeLocked(v any) error {
	// Apply filtering if configured
	if len(s.allowedStatuses) > 0 {
		if r, ok := v.(checks.Result); ok {
			if !s.allowedStatuses[string(r.Status)] {
				return nil
			}
		}
	}

	if s.enc != nil {
		return s.enc.write(v)
	}

	r, ok := v.(checks.Result)
	if !ok {
		// Ignore events in text mode.
		return nil
	}
	w := s.stderr
	if r.Passed() {
		w = s.stdout
	}
	if err := writeText(w, r, s.labeled); err != nil {
		return err
	}
	return flushIfPossible(w)
}

func writeText(w io.Writer, r checks.Result, labeled bool) error {
	if !labeled {
		_, err := fmt.Fprintln(w, r.Message)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s %s\n", statusLabel(r.Status), r.Repo, r.CheckID); err != nil {
		return err
	}
	if r.Message == "" {
		return nil
	}
	for _, line := range strings.Split(r.Message, "\n") {
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc != nil {
		return s.enc.finish()
	}
	return nil
}
