package builtin

import (
	"testing"

	"scorecard/internal/checks"

	"github.com/stretchr/testify/assert"
)

const validSpec = `openapi: 3.0.3
info:
  title: Widgets API
  version: 2.1.0
paths:
  /widgets:
    get:
      responses:
        '200':
          description: list
    post:
      responses:
        '201':
          description: created
  /widgets/{id}:
    delete:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        '204':
          description: deleted
`

func TestOpenAPISpecCheck_Evaluate(t *testing.T) {
	tests := []struct {
		name           string
		files          map[string]string
		expectedStatus checks.Status
		expectedMsg    string
	}{
		{
			name:           "FAIL when no spec",
			files:          map[string]string{"README.md": "x"},
			expectedStatus: checks.StatusFail,
			expectedMsg: "No OpenAPI specification file found in common locations\n" +
				"Looked for: openapi.{yaml,yml,json}, swagger.{yaml,yml,json}\n" +
				"In directories: root, /api, /docs, /spec, /.openapi",
		},
		{
			name:           "PASS with valid spec",
			files:          map[string]string{"api/openapi.yaml": validSpec},
			expectedStatus: checks.StatusPass,
			expectedMsg: "OpenAPI specification found and validated: api/openapi.yaml\n" +
				"Title: Widgets API (v2.1.0)\n" +
				"OpenAPI version: 3.0.3\n" +
				"Endpoints: 2 paths, 3 operations",
		},
		{
			name: "PASS notes several candidates and validates the first",
			files: map[string]string{
				"docs/swagger.json": `{"swagger": "2.0"}`,
				"openapi.yml":       validSpec,
			},
			expectedStatus: checks.StatusPass,
			expectedMsg: "OpenAPI specification found and validated: openapi.yml\n" +
				"Title: Widgets API (v2.1.0)\n" +
				"OpenAPI version: 3.0.3\n" +
				"Endpoints: 2 paths, 3 operations\n" +
				"Note: 2 OpenAPI files found, validated the first one",
		},
		{
			name:           "FAIL with structural problems",
			files:          map[string]string{".openapi/openapi.json": `{"openapi": "3.0.0", "info": {"title": "x"}, "paths": {"widgets": {}}}`},
			expectedStatus: checks.StatusFail,
			expectedMsg: "OpenAPI specification found but validation failed: .openapi/openapi.json\n" +
				"Error: invalid specification\n" +
				"Validation details:\n" +
				"  1. info.version must be a non-empty string\n" +
				"  2. path \"widgets\" must begin with /",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evaluate(t, &OpenAPISpecCheck{}, newTarget(t, tt.files))
			assert.Equal(t, tt.expectedStatus, res.Status)
			assert.Equal(t, tt.expectedMsg, res.Message)
		})
	}
}

func TestOpenAPISpecCheck_SyntaxError(t *testing.T) {
	res := evaluate(t, &OpenAPISpecCheck{}, newTarget(t, map[string]string{"swagger.yaml": "swagger: [2.0"}))
	assert.Equal(t, checks.StatusFail, res.Status)
	assert.Contains(t, res.Message, "OpenAPI specification found but validation failed: swagger.yaml\nError: parse: ")
}

func TestOpenAPISpecCheck_MissingResponses(t *testing.T) {
	spec := "openapi: 3.0.3\ninfo:\n  title: x\n  version: '1'\npaths:\n  /a:\n    get: {}\n"
	res := evaluate(t, &OpenAPISpecCheck{}, newTarget(t, map[string]string{"openapi.yaml": spec}))
	assert.Equal(t, checks.StatusFail, res.Status)
	assert.Contains(t, res.Message, "OpenAPI specification found but validation failed: openapi.yaml\n"+
		"Error: invalid specification\nValidation details:\n  1. ")
	assert.Contains(t, res.Message, "responses")
	assert.Equal(t, "openapi.yaml", res.Metadata["file"])
}

func TestOpenAPISpecCheck_FileRefs(t *testing.T) {
	spec := "openapi: 3.0.3\ninfo:\n  title: Widgets\n  version: '1'\npaths:\n  /widgets:\n    get:\n      responses:\n" +
		"        '200':\n          description: ok\n          content:\n            application/json:\n" +
		"              schema:\n                $ref: 'schemas/widget.yaml'\n"

	res := evaluate(t, &OpenAPISpecCheck{}, newTarget(t, map[string]string{
		"docs/openapi.yaml":        spec,
		"docs/schemas/widget.yaml": "type: object\nproperties:\n  id:\n    type: string\n",
	}))
	assert.Equal(t, checks.StatusPass, res.Status, res.Message)

	res = evaluate(t, &OpenAPISpecCheck{}, newTarget(t, map[string]string{"docs/openapi.yaml": spec}))
	assert.Equal(t, checks.StatusFail, res.Status)
	assert.Contains(t, res.Message, "Error: invalid specification")
}
