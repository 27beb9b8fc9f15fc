package builtin

import (
	"context"
	"fmt"
	"strings"

	"scorecard/internal/checks"
	"scorecard/internal/scorecardcfg"
	"scorecard/internal/source"
)

// descriptionPreview is the number of characters of the description shown on success.
const descriptionPreview = 80

type ScorecardConfigCheck struct{}

func (c *ScorecardConfigCheck) ID() string {
	return "scorecard-config-quality"
}

func (c *ScorecardConfigCheck) Title() string {
	return "Scorecard Config Content"
}

func (c *ScorecardConfigCheck) Description() string {
	return "Verifies that .scorecard/config.yml describes the service.\n\n" +
		"The service section must have non-empty team and description strings.\n\n" +
		"Examples:\n" +
		"  scorecard run scorecard-config-quality"
}

func (c *ScorecardConfigCheck) Evaluate(ctx context.Context, t checks.Target) (checks.Result, error) {
	ok, err := source.IsRegularFile(ctx, t.Source, scorecardcfg.Path)
	if err != nil {
		return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot look up %s: %v", scorecardcfg.Path, err)), nil
	}
	if !ok {
		return checks.FailResult(t, c.ID(), scorecardcfg.Path+" not found\n"+
			"This check validates config quality - create the config file first"), nil
	}

	text, err := t.ReadText(ctx, scorecardcfg.Path)
	if err != nil {
		return checks.ReadFailure(t, c.ID(), err), nil
	}
	cfg, err := scorecardcfg.Parse([]byte(text))
	if err != nil {
		return checks.FailResult(t, c.ID(), fmt.Sprintf("Error parsing %s: %v\nEnsure the file contains valid YAML syntax", scorecardcfg.Path, err)), nil
	}

	svc, ok := cfg.Service()
	if !ok {
		return checks.FailResult(t, c.ID(), scorecardcfg.Path+" exists but missing \"service\" section\n\n"+
			"Expected structure:\n"+
			"  service:\n"+
			"    name: \"Your Service Name\"\n"+
			"    team: \"Your Team Name\"\n"+
			"    description: \"A meaningful description of your service\""), nil
	}

	var problems []string
	if strings.TrimSpace(svc.Team) == "" {
		problems = append(problems, "  • team field is empty or missing")
	}
	if strings.TrimSpace(svc.Description) == "" {
		problems = append(problems, "  • description field is empty or missing")
	}
	if len(problems) > 0 {
		return checks.FailResult(t, c.ID(), "Scorecard config exists but lacks meaningful content:\n\n"+
			strings.Join(problems, "\n")+"\n\n"+
			"Both team and description fields must be filled to help catalog users\n"+
			"understand what your service does and who maintains it.\n\n"+
			"Example config.yml:\n"+
			"  service:\n"+
			"    name: \"User Authentication API\"\n"+
			"    team: \"Platform Security Team\"\n"+
			"    description: \"Handles user authentication, authorization, and session management\"\n"+
			"    links:\n"+
			"      - name: \"Documentation\"\n"+
			"        url: \"https://wiki.example.com/auth-api\""), nil
	}

	var b strings.Builder
	b.WriteString("Scorecard config has meaningful content:\n")
	fmt.Fprintf(&b, "  • Team: %s\n", svc.Team)
	fmt.Fprintf(&b, "  • Description: %s", truncate(svc.Description, descriptionPreview))
	if svc.Links > 0 {
		fmt.Fprintf(&b, "\n  • Links: %d configured", svc.Links)
	}
	return checks.PassResultWithMetadata(t, c.ID(), b.String(),
		map[string]any{"team": svc.Team, "links": svc.Links},
	), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func init() {
	checks.Register(&ScorecardConfigCheck{})
}
