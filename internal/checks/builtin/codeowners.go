package builtin

import (
	"context"
	"fmt"

	"scorecard/internal/checks"
	"scorecard/internal/codeowners"
	"scorecard/internal/source"
)

type CodeownersCheck struct{}

func (c *CodeownersCheck) ID() string {
	return "codeowners"
}

func (c *CodeownersCheck) Title() string {
	return "CODEOWNERS File"
}

func (c *CodeownersCheck) Description() string {
	return "Verifies that a CODEOWNERS file exists and defines at least one ownership rule.\n\n" +
		"Locations, checked in order:\n" +
		"- CODEOWNERS\n" +
		"- .github/CODEOWNERS\n" +
		"- docs/CODEOWNERS\n\n" +
		"Blank lines and lines starting with # are not rules.\n\n" +
		"Examples:\n" +
		"  scorecard run codeowners\n" +
		"  scorecard run codeowners --github acme/widgets"
}

func (c *CodeownersCheck) Evaluate(ctx context.Context, t checks.Target) (checks.Result, error) {
	rel, ok, err := source.FirstRegularFile(ctx, t.Source, codeowners.Locations)
	if err != nil {
		return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot look up CODEOWNERS: %v", err)), nil
	}
	if !ok {
		return checks.FailResult(t, c.ID(),
			"No CODEOWNERS file found\nExpected locations: CODEOWNERS, .github/CODEOWNERS, or docs/CODEOWNERS"), nil
	}

	text, err := t.ReadText(ctx, rel)
	if err != nil {
		return checks.ReadFailure(t, c.ID(), err), nil
	}
	rules := codeowners.CountRules(text)
	if rules == 0 {
		return checks.FailResultWithMetadata(t, c.ID(),
			fmt.Sprintf("CODEOWNERS file found at %s but contains no ownership rules\n"+
				"Add at least one ownership rule (e.g., '* @team-name')", rel),
			map[string]any{"file": rel, "rules": 0},
		), nil
	}
	return checks.PassResultWithMetadata(t, c.ID(),
		fmt.Sprintf("CODEOWNERS file found: %s (%d ownership rule%s)", rel, rules, plural(rules)),
		map[string]any{"file": rel, "rules": rules},
	), nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func init() {
	checks.Register(&CodeownersCheck{})
}
