package output

import "scorecard/internal/checks"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - check.result
// - run.finished
//
// JSON mode remains an aggregate of checks.Result values.
type Event struct {
	Type string `json:"type"`
	*checks.Result
	Targets  int `json:"targets,omitempty"`
	Checks   int `json:"checks,omitempty"`
	ExitCode int `json:"exit_code,omitempty"`
}

const (
	EventRunStarted  = "run.started"
	EventCheckResult = "check.result"
	EventRunFinished = "run.finished"
)

func eventFromResult(r checks.Result) Event {
	return Event{Type: EventCheckResult, Result: &r}
}
