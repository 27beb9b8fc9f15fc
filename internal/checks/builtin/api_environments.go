package builtin

import (
	"context"
	"fmt"
	"strings"

	"scorecard/internal/checks"
	"scorecard/internal/scorecardcfg"
	"scorecard/internal/source"
)

type APIEnvironmentsCheck struct{}

func (c *APIEnvironmentsCheck) ID() string {
	return "api-environments"
}

func (c *APIEnvironmentsCheck) Title() string {
	return "API Environments"
}

func (c *APIEnvironmentsCheck) Description() string {
	return "Verifies that repositories publishing an OpenAPI specification declare their\n" +
		"API environments in .scorecard/config.yml.\n\n" +
		"Repositories without an OpenAPI file pass. Otherwise openapi.environments must\n" +
		"be a non-empty mapping and every environment needs a base_url.\n\n" +
		"Example config:\n" +
		"  openapi:\n" +
		"    spec_file: \"openapi.yaml\"\n" +
		"    environments:\n" +
		"      production:\n" +
		"        base_url: \"https://api.example.com\"\n\n" +
		"Examples:\n" +
		"  scorecard run openapi-spec,api-environments"
}

func (c *APIEnvironmentsCheck) Evaluate(ctx context.Context, t checks.Target) (checks.Result, error) {
	found, err := findOpenAPIFiles(ctx, t.Source)
	if err != nil {
		return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot look up OpenAPI files: %v", err)), nil
	}
	if len(found) == 0 {
		return checks.PassResult(t, c.ID(), "No OpenAPI specification found - environment configuration not required\n"+
			"This check only applies to repositories with API specifications"), nil
	}
	specPath := found[0]

	ok, err := source.IsRegularFile(ctx, t.Source, scorecardcfg.Path)
	if err != nil {
		return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot look up %s: %v", scorecardcfg.Path, err)), nil
	}
	if !ok {
		return checks.FailResult(t, c.ID(), fmt.Sprintf(
			"OpenAPI specification found (%s), but no %s exists\n"+
				"Create %s with openapi.environments configuration\n\n"+
				"Example:\n"+
				"  openapi:\n"+
				"    spec_file: \"openapi.yaml\"\n"+
				"    environments:\n"+
				"      production:\n"+
				"        base_url: \"https://api.example.com\"\n"+
				"        description: \"Production environment\"\n"+
				"      staging:\n"+
				"        base_url: \"https://staging-api.example.com\"",
			specPath, scorecardcfg.Path, scorecardcfg.Path)), nil
	}

	text, err := t.ReadText(ctx, scorecardcfg.Path)
	if err != nil {
		return checks.ReadFailure(t, c.ID(), err), nil
	}
	cfg, err := scorecardcfg.Parse([]byte(text))
	if err != nil {
		return checks.FailResult(t, c.ID(), fmt.Sprintf("Error parsing %s: %v", scorecardcfg.Path, err)), nil
	}

	section, ok := cfg.OpenAPI()
	if !ok {
		return checks.FailResult(t, c.ID(), fmt.Sprintf(
			"OpenAPI specification found, but no openapi section in %s\n"+
				"Add an openapi section with environments configuration\n\n"+
				"Example:\n"+
				"  openapi:\n"+
				"    spec_file: \"%s\"\n"+
				"    environments:\n"+
				"      production:\n"+
				"        base_url: \"https://api.example.com\"\n"+
				"        description: \"Production environment\"",
			scorecardcfg.Path, specPath)), nil
	}
	if !section.HasEnvironments() {
		return checks.FailResult(t, c.ID(), "openapi section exists but no environments configured\n"+
			"Add at least one environment with a base_url\n\n"+
			"Example:\n"+
			"  openapi:\n"+
			"    environments:\n"+
			"      production:\n"+
			"        base_url: \"https://api.example.com\""), nil
	}
	if section.EnvironmentCount() == 0 {
		return checks.FailResult(t, c.ID(), "openapi.environments exists but is empty\n"+
			"Add at least one environment configuration"), nil
	}

	envs, missing := section.Environments()
	if len(missing) > 0 {
		return checks.FailResultWithMetadata(t, c.ID(),
			fmt.Sprintf("Some environments are missing base_url: %s\nEach environment must have a base_url field", strings.Join(missing, ", ")),
			map[string]any{"missing_base_url": missing},
		), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "API environment configuration found for OpenAPI spec: %s\n", specPath)
	fmt.Fprintf(&b, "Configured environments: %d", len(envs))
	names := make([]string, 0, len(envs))
	for _, env := range envs {
		names = append(names, env.Name)
		fmt.Fprintf(&b, "\n  • %s: %s", env.Name, env.BaseURL)
		if env.Description != "" {
			fmt.Fprintf(&b, " - %s", env.Description)
		}
	}
	if section.SpecFile != "" {
		fmt.Fprintf(&b, "\nSpec file reference: %s", section.SpecFile)
	}
	return checks.PassResultWithMetadata(t, c.ID(), b.String(),
		map[string]any{"spec": specPath, "environments": names},
	), nil
}

func init() {
	checks.Register(&APIEnvironmentsCheck{})
}
