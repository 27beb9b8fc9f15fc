// Package openapi locates and validates OpenAPI and Swagger documents.
//
// A document first passes a structural check over the YAML tree, which
// yields the summary counts, and is then validated against the OpenAPI
// schema with references resolved. Swagger 2.0 documents are converted to
// OpenAPI 3 before schema validation.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Paths lists candidate document locations in priority order.
var Paths = []string{
	"openapi.yaml",
	"openapi.yml",
	"openapi.json",
	"swagger.yaml",
	"swagger.yml",
	"swagger.json",
	"api/openapi.yaml",
	"api/openapi.yml",
	"api/openapi.json",
	"api/swagger.yaml",
	"api/swagger.yml",
	"api/swagger.json",
	"docs/openapi.yaml",
	"docs/openapi.yml",
	"docs/openapi.json",
	"docs/swagger.yaml",
	"docs/swagger.yml",
	"docs/swagger.json",
	"spec/openapi.yaml",
	"spec/openapi.yml",
	"spec/openapi.json",
	".openapi/openapi.yaml",
	".openapi/openapi.yml",
	".openapi/openapi.json",
}

var methods = []string{"get", "post", "put", "delete", "patch", "options", "head", "trace"}

// Document is the summary of a valid specification.
type Document struct {
	// SpecVersion is the value of the openapi or swagger field.
	SpecVersion string
	Title       string
	APIVersion  string
	Paths       int
	Operations  int
}

// ValidationError lists the problems found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// RefReader returns the content of a document referenced from the one being
// parsed. name is relative to the repository root.
type RefReader func(ctx context.Context, name string) ([]byte, error)

// Parse decodes and validates the document stored at location. Relative
// $refs to other files are read through read; a nil read rejects them.
// Syntax errors are returned as is; invalid documents are reported as a
// *ValidationError.
func Parse(ctx context.Context, location string, data []byte, read RefReader) (*Document, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ValidationError{Problems: []string{"document is empty"}}
	}
	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, &ValidationError{Problems: []string{"document root must be an object"}}
	}

	v := &validator{}
	d := &Document{}
	d.SpecVersion = v.version(root)
	d.Title, d.APIVersion = v.info(get(root, "info"))
	d.Paths, d.Operations = v.paths(get(root, "paths"), is31(d.SpecVersion))
	if len(v.problems) > 0 {
		return nil, &ValidationError{Problems: v.problems}
	}

	if err := validateSchema(ctx, location, data, root, d.SpecVersion, read); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	return d, nil
}

func is31(version string) bool {
	return strings.HasPrefix(version, "3.1")
}

func validateSchema(ctx context.Context, location string, data []byte, root *yaml.Node, version string, read RefReader) error {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	if read != nil {
		loader.IsExternalRefsAllowed = true
		loader.ReadFromURIFunc = func(_ *openapi3.Loader, u *url.URL) ([]byte, error) {
			if u.Scheme != "" || u.Host != "" {
				return nil, fmt.Errorf("remote reference %s is not supported", u)
			}
			return read(ctx, path.Clean(strings.TrimPrefix(u.Path, "/")))
		}
	}
	loc := &url.URL{Path: location}

	var (
		doc *openapi3.T
		err error
	)
	if version == "2.0" {
		doc, err = convertSwagger(root)
		if err != nil {
			return err
		}
		err = loader.ResolveRefsIn(doc, loc)
	} else {
		doc, err = loader.LoadFromDataWithPath(data, loc)
	}
	if err != nil {
		return err
	}

	var opts []openapi3.ValidationOption
	if is31(version) {
		if doc.Paths == nil {
			doc.Paths = openapi3.NewPaths()
		}
		opts = append(opts, openapi3.AllowExtraSiblingFields("webhooks", "jsonSchemaDialect"))
	}
	return doc.Validate(ctx, opts...)
}

func convertSwagger(root *yaml.Node) (*openapi3.T, error) {
	raw, err := json.Marshal(jsonValue(root))
	if err != nil {
		return nil, err
	}
	var doc2 openapi2.T
	if err := json.Unmarshal(raw, &doc2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&doc2)
}

// jsonValue converts a YAML tree into values encoding/json accepts. Mapping
// keys are always strings, so numeric response codes survive.
func jsonValue(n *yaml.Node) any {
	n = deref(n)
	switch n.Kind {
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			m[n.Content[i].Value] = jsonValue(n.Content[i+1])
		}
		return m
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			out = append(out, jsonValue(c))
		}
		return out
	case yaml.ScalarNode:
		if n.Tag == "!!timestamp" {
			return n.Value
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return n.Value
		}
		return v
	}
	return nil
}

type validator struct {
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) version(root *yaml.Node) string {
	if n := get(root, "openapi"); n != nil {
		s, ok := str(n)
		if !ok || !strings.HasPrefix(s, "3.") {
			v.addf("unsupported openapi version %q", n.Value)
		}
		return n.Value
	}
	if n := get(root, "swagger"); n != nil {
		s, ok := str(n)
		if !ok || s != "2.0" {
			v.addf("unsupported swagger version %q", n.Value)
		}
		return n.Value
	}
	v.addf("missing openapi or swagger version field")
	return ""
}

func (v *validator) info(n *yaml.Node) (title, version string) {
	if n == nil || n.Kind != yaml.MappingNode {
		v.addf("info must be an object")
		return "", ""
	}
	title, ok := str(get(n, "title"))
	if !ok || strings.TrimSpace(title) == "" {
		v.addf("info.title must be a non-empty string")
	}
	version, ok = str(get(n, "version"))
	if !ok || strings.TrimSpace(version) == "" {
		v.addf("info.version must be a non-empty string")
	}
	return title, version
}

func (v *validator) paths(n *yaml.Node, optional bool) (paths, operations int) {
	if n == nil {
		if !optional {
			v.addf("paths must be an object")
		}
		return 0, 0
	}
	if n.Kind != yaml.MappingNode {
		v.addf("paths must be an object")
		return 0, 0
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		item := deref(n.Content[i+1])
		paths++
		if !strings.HasPrefix(key, "/") {
			v.addf("path %q must begin with /", key)
		}
		if isNull(item) {
			continue
		}
		if item.Kind != yaml.MappingNode {
			v.addf("path item %q must be an object", key)
			continue
		}
		for _, m := range methods {
			op := get(item, m)
			if op == nil || isNull(op) {
				continue
			}
			if op.Kind != yaml.MappingNode {
				v.addf("operation %s %s must be an object", strings.ToUpper(m), key)
				continue
			}
			operations++
		}
	}
	return paths, operations
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func get(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return deref(m.Content[i+1])
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func str(n *yaml.Node) (string, bool) {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!str" {
		return "", false
	}
	return n.Value, true
}
