package output

import (
	"errors"
	"fmt"
	"sync"

	"scorecard/internal/checks"
)

// Sink defines a destination for check results and lifecycle events.
type Sink interface {
	Write(v any) error
	Close() error
}

// Tally counts results by status as they pass through a Manager.
type Tally struct {
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
	Error int `json:"error"`
}

// Total is the number of results seen.
func (t Tally) Total() int { return t.Pass + t.Fail + t.Error }

// ExitCode is 0 when every result passed and 1 otherwise. An empty run
// counts as passing.
func (t Tally) ExitCode() int {
	if t.Fail > 0 || t.Error > 0 {
		return 1
	}
	return 0
}

// Manager fans results out to multiple sinks and keeps a Tally.
type Manager struct {
	sinks []Sink

	mu    sync.Mutex
	tally Tally
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if s == nil {
		return fmt.Errorf("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Write(v any) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if r, ok := v.(checks.Result); ok {
		m.count(r.Status)
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(v); err != nil {
			errs = append(errs, fmt.Errorf("write %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing to sinks: %w", errors.Join(errs...))
	}
	return nil
}

func (m *Manager) count(st checks.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch st {
	case checks.StatusPass:
		m.tally.Pass++
	case checks.StatusFail:
		m.tally.Fail++
	default:
		m.tally.Error++
	}
}

// Tally returns the counts recorded so far.
func (m *Manager) Tally() Tally {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tally
}

func (m *Manager) Close() error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sinks: %w", errors.Join(errs...))
	}
	return nil
}
