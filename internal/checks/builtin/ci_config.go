package builtin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"scorecard/internal/checks"
	"scorecard/internal/source"
)

// WorkflowsDir holds GitHub Actions workflows.
const WorkflowsDir = ".github/workflows"

// OtherCIFiles are configuration files of CI systems other than GitHub Actions.
var OtherCIFiles = []string{
	".travis.yml",
	".gitlab-ci.yml",
	"circle.yml",
	".circleci/config.yml",
	"Jenkinsfile",
	".drone.yml",
	"azure-pipelines.yml",
	"bitbucket-pipelines.yml",
}

const workflowPreview = 3

type CIConfigCheck struct{}

func (c *CIConfigCheck) ID() string {
	return "ci-config"
}

func (c *CIConfigCheck) Title() string {
	return "CI Configuration"
}

func (c *CIConfigCheck) Description() string {
	return "Verifies that the repository has continuous integration configured.\n\n" +
		"Passes when .github/workflows contains *.yml or *.yaml files, or when any of\n" +
		"these files exist:\n" +
		"- " + strings.Join(OtherCIFiles, "\n- ") + "\n\n" +
		"Examples:\n" +
		"  scorecard run ci-config"
}

func (c *CIConfigCheck) workflows(ctx context.Context, t checks.Target) ([]string, error) {
	dir, err := t.Source.Stat(ctx, WorkflowsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !dir.Dir {
		return nil, nil
	}
	entries, err := t.Source.ReadDir(ctx, WorkflowsDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Dir {
			continue
		}
		if strings.HasSuffix(e.Name, ".yml") || strings.HasSuffix(e.Name, ".yaml") {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

func (c *CIConfigCheck) Evaluate(ctx context.Context, t checks.Target) (checks.Result, error) {
	workflows, err := c.workflows(ctx, t)
	if err != nil {
		return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot list %s: %v", WorkflowsDir, err)), nil
	}

	var other []string
	for _, p := range OtherCIFiles {
		ok, err := source.Exists(ctx, t.Source, p)
		if err != nil {
			return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot look up %s: %v", p, err)), nil
		}
		if ok {
			other = append(other, p)
		}
	}

	if len(workflows) == 0 && len(other) == 0 {
		return checks.FailResult(t, c.ID(), "No CI configuration found"), nil
	}

	var parts []string
	if len(workflows) > 0 {
		shown := workflows
		more := ""
		if len(shown) > workflowPreview {
			shown = shown[:workflowPreview]
			more = "..."
		}
		parts = append(parts, fmt.Sprintf("GitHub Actions: %d workflow(s) (%s%s)", len(workflows), strings.Join(shown, ", "), more))
	}
	if len(other) > 0 {
		parts = append(parts, "Other CI: "+strings.Join(other, ", "))
	}
	return checks.PassResultWithMetadata(t, c.ID(), strings.Join(parts, "; "),
		map[string]any{"workflows": workflows, "other_ci": other},
	), nil
}

func init() {
	checks.Register(&CIConfigCheck{})
}
