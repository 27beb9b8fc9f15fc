package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"scorecard/internal/output"
	"scorecard/internal/source"
	"scorecard/internal/textread"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in sync:
	// - flag names in internal/flags
	// - CLI flags in internal/cli/run.go
	// - the mapstructure keys of Input below
	Target  Target
	Checks  Checks
	Output  Output
	Runtime Runtime
}

type Target struct {
	// RepoPath is the fallback repository directory when no target is given
	// (SCORECARD_REPO_PATH). Empty means the working directory.
	RepoPath string

	// Repos lists local repository directories (see --repo).
	Repos []string

	// GitHub lists repositories read through the GitHub API as OWNER/REPO (see --github).
	// Values may be provided as repeated flags and/or comma-separated lists.
	GitHub []string

	// Ref pins GitHub targets to a branch, tag or commit (see --ref).
	Ref string
}

type Checks struct {
	// Selector selects which checks to run.
	// Empty means all checks; otherwise a comma-separated list of check IDs.
	Selector string

	// Set provides per-check option overrides from the CLI.
	// Entries are of the form checkID.option=value (repeatable; comma-separated accepted; see --set).
	Set []string

	// Decode controls how undecodable bytes in repository files are handled (see --decode).
	// Allowed values: lenient, strict.
	Decode string
}

type Output struct {
	// ConsoleFormat controls the console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterStatus filters console output by result status (see --console-filter-status).
	// Allowed values: PASS, FAIL, ERROR.
	ConsoleFilterStatus []string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Concurrency bounds how many check evaluations run at once (see --concurrency).
	// Must be >= 1.
	Concurrency int

	// Timeout is the global timeout for the run (see --timeout).
	// Must be > 0.
	Timeout time.Duration

	// Verbose enables debug logging (see --verbose).
	Verbose bool
}

const (
	DefaultConcurrency = 4
	DefaultTimeout     = 5 * time.Minute
)

func New() *Config {
	return &Config{
		Checks: Checks{
			Decode: string(textread.Lenient),
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: DefaultConcurrency,
			Timeout:     DefaultTimeout,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs. Local paths are taken verbatim.
	c.Target.GitHub = splitCommaList(c.Target.GitHub)
	c.Checks.Set = splitAssignments(c.Checks.Set)
	c.Output.Emit = splitCommaList(c.Output.Emit)
	c.Output.ConsoleFilterStatus = splitCommaList(c.Output.ConsoleFilterStatus)
	c.Target.Repos = trimList(c.Target.Repos)

	// Targeting
	if len(c.Target.Repos) == 0 && len(c.Target.GitHub) == 0 {
		p := c.Target.RepoPath
		if p == "" {
			p = "."
		}
		c.Target.Repos = []string{p}
	}
	for _, r := range c.Target.GitHub {
		if _, err := source.ParseGitHubRepo(r); err != nil {
			return fmt.Errorf("invalid --github value: %w", err)
		}
	}
	c.Target.Ref = strings.TrimSpace(c.Target.Ref)
	if c.Target.Ref != "" && len(c.Target.GitHub) == 0 {
		return errors.New("--ref requires at least one --github repository")
	}

	// Checks
	mode, err := textread.ParseMode(c.Checks.Decode)
	if err != nil {
		return fmt.Errorf("invalid --decode value: %w", err)
	}
	c.Checks.Decode = string(mode)
	c.Checks.Selector = strings.TrimSpace(c.Checks.Selector)

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", v)
		}
		c.Output.Emit[i] = v
	}

	for i, s := range c.Output.ConsoleFilterStatus {
		v := strings.ToUpper(strings.TrimSpace(s))
		if v != "PASS" && v != "FAIL" && v != "ERROR" {
			return fmt.Errorf("unsupported --console-filter-status value: %s (must be one of: PASS, FAIL, ERROR)", s)
		}
		c.Output.ConsoleFilterStatus[i] = v
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			f, err := output.InferFormat(c.Output.Out)
			if err != nil {
				return fmt.Errorf("%w; use --out-format", err)
			}
			c.Output.OutFormat = f
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	if c.Output.NoConsole && c.Output.Out == "" && len(c.Output.Emit) == 0 {
		return errors.New("--no-console requires --out or --emit")
	}

	// Check option syntax validation (check.option=value)
	if len(c.Checks.Set) > 0 {
		if _, err := ParseCheckOptionAssignments(c.Checks.Set); err != nil {
			return err
		}
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseCheckOptionAssignments parses values of the form "checkID.option=value".
//
// Notes:
//   - Entries may be provided via repeated flags and/or comma-delimited lists.
//   - This validates syntax only (no validation of check IDs or option names).
//   - Empty values are allowed ("check.option=").
//   - The option part may itself contain dots ("license.allow.repos=...").
//   - A comma-separated part without "=" continues the previous value, so
//     "license.allow.repos=acme/a,acme/b" keeps both repositories.
func ParseCheckOptionAssignments(values []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for _, raw := range splitAssignments(values) {
		left, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set entry %q: expected check.option=value", raw)
		}
		value = strings.TrimSpace(value)
		checkID, opt, ok := strings.Cut(strings.TrimSpace(left), ".")
		if !ok {
			return nil, fmt.Errorf("invalid --set entry %q: expected check.option=value", raw)
		}
		checkID = strings.TrimSpace(checkID)
		opt = strings.TrimSpace(opt)
		if checkID == "" || opt == "" {
			return nil, fmt.Errorf("invalid --set entry %q: expected non-empty check and option", raw)
		}
		if _, ok := out[checkID]; !ok {
			out[checkID] = make(map[string]string)
		}
		out[checkID][opt] = value
	}
	return out, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

func splitAssignments(values []string) []string {
	var out []string
	for _, v := range values {
		start := len(out)
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			if !strings.Contains(p, "=") && len(out) > start {
				out[len(out)-1] += "," + p
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

func trimList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
