// Package codeowners parses GitHub CODEOWNERS files.
package codeowners

import (
	"fmt"
	"regexp"
	"strings"

	"scorecard/internal/textread"
)

// Locations lists where GitHub looks for CODEOWNERS, in priority order.
var Locations = []string{
	"CODEOWNERS",
	".github/CODEOWNERS",
	"docs/CODEOWNERS",
}

var (
	userPattern  = regexp.MustCompile(`^@[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	teamPattern  = regexp.MustCompile(`^@[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?/[a-zA-Z0-9_.-]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidOwner reports whether s is @user, @org/team or an email address.
func ValidOwner(s string) bool {
	return userPattern.MatchString(s) || teamPattern.MatchString(s) || emailPattern.MatchString(s)
}

func isRuleLine(trimmed string) bool {
	return trimmed != "" && !strings.HasPrefix(trimmed, "#")
}

// CountRules counts lines that are neither blank nor comments.
func CountRules(text string) int {
	n := 0
	for _, line := range textread.SplitLines(text) {
		if isRuleLine(textread.TrimSpace(line)) {
			n++
		}
	}
	return n
}

type Rule struct {
	Line    int
	Pattern string
	Owners  []string
}

// LineError is a syntax problem on one line.
type LineError struct {
	Line    int
	Pattern string
	// Invalid holds the rejected owners; empty when the owners are missing.
	Invalid []string
}

func (e LineError) Error() string {
	if len(e.Invalid) == 0 {
		return fmt.Sprintf("Line %d: Missing owner(s) for pattern '%s'", e.Line, e.Pattern)
	}
	return fmt.Sprintf("Line %d: Invalid owner format: %s", e.Line, strings.Join(e.Invalid, ", "))
}

type File struct {
	Rules  []Rule
	Errors []LineError
}

// Parse reads every rule line as "<pattern> <owner>...". Lines are numbered
// from 1.
func Parse(text string) *File {
	f := &File{}
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !isRuleLine(trimmed) {
			continue
		}
		parts := strings.Fields(trimmed)
		if len(parts) < 2 {
			f.Errors = append(f.Errors, LineError{Line: i + 1, Pattern: parts[0]})
			continue
		}
		var invalid []string
		for _, owner := range parts[1:] {
			if !ValidOwner(owner) {
				invalid = append(invalid, owner)
			}
		}
		if len(invalid) > 0 {
			f.Errors = append(f.Errors, LineError{Line: i + 1, Pattern: parts[0], Invalid: invalid})
			continue
		}
		f.Rules = append(f.Rules, Rule{Line: i + 1, Pattern: parts[0], Owners: parts[1:]})
	}
	return f
}

// UniqueOwners returns the distinct owners of valid rules in first-seen order.
func (f *File) UniqueOwners() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range f.Rules {
		for _, o := range r.Owners {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out
}
