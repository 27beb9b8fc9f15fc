// Package scorecardcfg reads the per-repository .scorecard/config.yml file.
//
// The file is loosely typed: fields may be missing, null or of the wrong
// kind, and each accessor reports what it found rather than failing the
// whole document.
package scorecardcfg

import "gopkg.in/yaml.v3"

// Path is the location of the config file relative to the repository root.
const Path = ".scorecard/config.yml"

type Config struct {
	root *yaml.Node
}

// Parse decodes a YAML document. A document whose root is not a mapping
// parses successfully but has no sections.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	c := &Config{}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		c.root = doc.Content[0]
	}
	return c, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolveAlias(m.Content[i+1])
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// truthy follows YAML-to-JSON truthiness: null, false, 0 and "" are false.
func truthy(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind != yaml.ScalarNode {
		return true
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return n.Value != ""
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}

// stringValue returns the value of a string scalar.
func stringValue(n *yaml.Node) (string, bool) {
	if n == nil || n.Kind != yaml.ScalarNode {
		return "", false
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func display(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return ""
	}
	return string(out)
}

type Service struct {
	Name string
	// Team and Description are empty when missing or not strings.
	Team        string
	Description string
	// Links is the number of entries when links is a list.
	Links int
}

// Service returns the service section, or false when it is absent or empty.
func (c *Config) Service() (*Service, bool) {
	n := lookup(c.root, "service")
	if !truthy(n) {
		return nil, false
	}
	s := &Service{}
	s.Name, _ = stringValue(lookup(n, "name"))
	s.Team, _ = stringValue(lookup(n, "team"))
	s.Description, _ = stringValue(lookup(n, "description"))
	if links := lookup(n, "links"); links != nil && links.Kind == yaml.SequenceNode {
		s.Links = len(links.Content)
	}
	return s, true
}

type Environment struct {
	Name        string
	BaseURL     string
	Description string
}

type OpenAPI struct {
	SpecFile     string
	environments *yaml.Node
}

// OpenAPI returns the openapi section, or false when it is absent or empty.
func (c *Config) OpenAPI() (*OpenAPI, bool) {
	n := lookup(c.root, "openapi")
	if !truthy(n) {
		return nil, false
	}
	o := &OpenAPI{environments: lookup(n, "environments")}
	if spec := lookup(n, "spec_file"); truthy(spec) {
		o.SpecFile = display(spec)
	}
	return o, true
}

// HasEnvironments reports whether environments is a mapping.
func (o *OpenAPI) HasEnvironments() bool {
	return o.environments != nil && o.environments.Kind == yaml.MappingNode
}

// Environments returns the configured environments in file order. Missing
// lists the names of entries without a base_url.
func (o *OpenAPI) Environments() (envs []Environment, missing []string) {
	if !o.HasEnvironments() {
		return nil, nil
	}
	m := o.environments
	for i := 0; i+1 < len(m.Content); i += 2 {
		name := m.Content[i].Value
		cfg := resolveAlias(m.Content[i+1])
		base := lookup(cfg, "base_url")
		if !truthy(cfg) || !truthy(base) {
			missing = append(missing, name)
			continue
		}
		env := Environment{Name: name, BaseURL: display(base)}
		if d := lookup(cfg, "description"); truthy(d) {
			env.Description = display(d)
		}
		envs = append(envs, env)
	}
	return envs, missing
}

// EnvironmentCount is the number of entries in the environments mapping.
func (o *OpenAPI) EnvironmentCount() int {
	if !o.HasEnvironments() {
		return 0
	}
	return len(o.environments.Content) / 2
}
