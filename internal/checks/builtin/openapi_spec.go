package builtin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scorecard/internal/checks"
	"scorecard/internal/openapi"
	"scorecard/internal/source"
)

type OpenAPISpecCheck struct{}

func (c *OpenAPISpecCheck) ID() string {
	return "openapi-spec"
}

func (c *OpenAPISpecCheck) Title() string {
	return "OpenAPI Specification"
}

func (c *OpenAPISpecCheck) Description() string {
	return "Verifies that an OpenAPI or Swagger specification exists and is valid.\n\n" +
		"Looked for: openapi.{yaml,yml,json}, swagger.{yaml,yml,json}\n" +
		"In directories: root, api/, docs/, then openapi.* in spec/ and .openapi/\n\n" +
		"The first file found is validated: an openapi 3.x or swagger 2.0 version,\n" +
		"info.title, info.version and a paths object whose keys begin with /, then\n" +
		"the full OpenAPI schema with $refs resolved (relative file refs included).\n\n" +
		"Examples:\n" +
		"  scorecard run openapi-spec"
}

// findOpenAPIFiles returns every candidate document that is a regular file,
// in priority order.
func findOpenAPIFiles(ctx context.Context, src source.Source) ([]string, error) {
	var found []string
	for _, p := range openapi.Paths {
		ok, err := source.IsRegularFile(ctx, src, p)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, p)
		}
	}
	return found, nil
}

func (c *OpenAPISpecCheck) Evaluate(ctx context.Context, t checks.Target) (checks.Result, error) {
	found, err := findOpenAPIFiles(ctx, t.Source)
	if err != nil {
		return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot look up OpenAPI files: %v", err)), nil
	}
	if len(found) == 0 {
		return checks.FailResult(t, c.ID(), "No OpenAPI specification file found in common locations\n"+
			"Looked for: openapi.{yaml,yml,json}, swagger.{yaml,yml,json}\n"+
			"In directories: root, /api, /docs, /spec, /.openapi"), nil
	}

	specPath := found[0]
	text, err := t.ReadText(ctx, specPath)
	if err != nil {
		return checks.ReadFailure(t, c.ID(), err), nil
	}

	doc, err := openapi.Parse(ctx, specPath, []byte(text), func(ctx context.Context, name string) ([]byte, error) {
		ref, err := t.ReadText(ctx, name)
		return []byte(ref), err
	})
	if err != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "OpenAPI specification found but validation failed: %s\n", specPath)
		var ve *openapi.ValidationError
		if errors.As(err, &ve) {
			b.WriteString("Error: invalid specification\nValidation details:")
			for i, p := range ve.Problems {
				fmt.Fprintf(&b, "\n  %d. %s", i+1, p)
			}
		} else {
			fmt.Fprintf(&b, "Error: %v", err)
		}
		return checks.FailResultWithMetadata(t, c.ID(), b.String(), map[string]any{"file": specPath}), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "OpenAPI specification found and validated: %s\n", specPath)
	fmt.Fprintf(&b, "Title: %s (v%s)\n", doc.Title, doc.APIVersion)
	fmt.Fprintf(&b, "OpenAPI version: %s\n", doc.SpecVersion)
	fmt.Fprintf(&b, "Endpoints: %d paths, %d operations", doc.Paths, doc.Operations)
	if len(found) > 1 {
		fmt.Fprintf(&b, "\nNote: %d OpenAPI files found, validated the first one", len(found))
	}
	return checks.PassResultWithMetadata(t, c.ID(), b.String(), map[string]any{
		"file":         specPath,
		"spec_version": doc.SpecVersion,
		"paths":        doc.Paths,
		"operations":   doc.Operations,
	}), nil
}

func init() {
	checks.Register(&OpenAPISpecCheck{})
}
