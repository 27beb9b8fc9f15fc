package builtin

import (
	"context"
	"fmt"
	"strings"

	"scorecard/internal/checks"
	"scorecard/internal/codeowners"
	"scorecard/internal/source"
)

const codeownersSyntaxExample = "Example valid CODEOWNERS syntax:\n" +
	"  * @default-owner\n" +
	"  *.js @frontend-team\n" +
	"  /docs/ @docs-team @tech-writers\n" +
	"  src/api/ user@example.com @backend-team"

const codeownersPreviewRules = 3

type CodeownersQualityCheck struct{}

func (c *CodeownersQualityCheck) ID() string {
	return "codeowners-quality"
}

func (c *CodeownersQualityCheck) Title() string {
	return "CODEOWNERS Syntax"
}

func (c *CodeownersQualityCheck) Description() string {
	return "Validates the syntax of the CODEOWNERS file.\n\n" +
		"Every rule must be '<pattern> <owner>...' where each owner is @username,\n" +
		"@org/team-name or an email address. The file is located the same way as\n" +
		"the codeowners check.\n\n" +
		"Examples:\n" +
		"  scorecard run codeowners,codeowners-quality"
}

func (c *CodeownersQualityCheck) Evaluate(ctx context.Context, t checks.Target) (checks.Result, error) {
	rel, ok, err := source.FirstRegularFile(ctx, t.Source, codeowners.Locations)
	if err != nil {
		return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot look up CODEOWNERS: %v", err)), nil
	}
	if !ok {
		return checks.FailResult(t, c.ID(), "No CODEOWNERS file found\n"+
			"This check validates CODEOWNERS syntax - create the file first\n"+
			"(the codeowners check validates existence, this check validates syntax quality)"), nil
	}

	text, err := t.ReadText(ctx, rel)
	if err != nil {
		return checks.ReadFailure(t, c.ID(), err), nil
	}
	f := codeowners.Parse(text)

	if len(f.Errors) > 0 {
		var b strings.Builder
		b.WriteString("CODEOWNERS file has syntax errors:\n\n")
		for _, e := range f.Errors {
			fmt.Fprintf(&b, "  %s\n", e.Error())
			if len(e.Invalid) > 0 {
				b.WriteString("    Expected: @username, @org/team-name, or email@domain.com\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(codeownersSyntaxExample)
		return checks.FailResultWithMetadata(t, c.ID(), b.String(),
			map[string]any{"file": rel, "errors": len(f.Errors)},
		), nil
	}

	if len(f.Rules) == 0 {
		return checks.FailResultWithMetadata(t, c.ID(),
			"CODEOWNERS file found but contains no valid ownership rules\n"+
				"Add at least one rule in the format: <pattern> <owner1> [<owner2>...]",
			map[string]any{"file": rel, "rules": 0},
		), nil
	}

	owners := f.UniqueOwners()
	var b strings.Builder
	fmt.Fprintf(&b, "CODEOWNERS syntax validated: %s\n", rel)
	fmt.Fprintf(&b, "  %d ownership rule%s\n", len(f.Rules), plural(len(f.Rules)))
	fmt.Fprintf(&b, "  %d unique owner%s", len(owners), plural(len(owners)))
	for i, r := range f.Rules {
		if i == codeownersPreviewRules {
			fmt.Fprintf(&b, "\n  ... and %d more", len(f.Rules)-codeownersPreviewRules)
			break
		}
		fmt.Fprintf(&b, "\n  - %s -> %s", r.Pattern, strings.Join(r.Owners, ", "))
	}
	return checks.PassResultWithMetadata(t, c.ID(), b.String(),
		map[string]any{"file": rel, "rules": len(f.Rules), "owners": len(owners)},
	), nil
}

func init() {
	checks.Register(&CodeownersQualityCheck{})
}
