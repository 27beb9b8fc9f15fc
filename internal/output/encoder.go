package output

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"scorecard/internal/checks"
)

// structured holds the json/ndjson behavior shared by the emit and file sinks.
//
// json aggregates check results and writes one indented array at the end.
// ndjson streams Events, wrapping bare results as check.result events.
type structured struct {
	w       io.Writer
	format  string
	results []checks.Result
}

func newStructured(w io.Writer, format string) (*structured, error) {
	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return &structured{w: w, format: format}, nil
}

func (s *structured) write(v any) error {
	if s.format == "json" {
		if r, ok := v.(checks.Result); ok {
			s.results = append(s.results, r)
		}
		return nil
	}

	var e Event
	switch t := v.(type) {
	case Event:
		e = t
	case checks.Result:
		e = eventFromResult(t)
	default:
		return nil
	}
	if err := json.NewEncoder(s.w).Encode(e); err != nil {
		return err
	}
	return flushIfPossible(s.w)
}

func (s *structured) finish() error {
	if s.format != "json" {
		return nil
	}
	results := s.results
	if results == nil {
		results = []checks.Result{}
	}
	encoder := json.NewEncoder(s.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return err
	}
	return flushIfPossible(s.w)
}

// InferFormat derives json or ndjson from a file extension.
func InferFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return "json", nil
	case ".ndjson", ".jsonl":
		return "ndjson", nil
	default:
		return "", fmt.Errorf("cannot infer output format from file extension %q", ext)
	}
}

type flusher interface {
	Flush() error
}

// flushIfPossible pushes buffered writers (bufio.Writer and friends) so each
// streamed line is visible to readers immediately.
func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
