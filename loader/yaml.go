package loader

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/c360/semunits/unit"
)

type yamlUnit struct {
	Name     string               `yaml:"name,omitempty"`
	Parent   string               `yaml:"parent,omitempty"`
	Kind     string               `yaml:"kind,omitempty"`
	Handler  string               `yaml:"handler,omitempty"`
	Params   yamlParams           `yaml:"params,omitempty"`
	Source   *unit.Source         `yaml:"source,omitempty"`
	Children map[string]*yamlUnit `yaml:"children,omitempty"`
}

// yamlParams keeps mapping order, which a Go map would lose.
type yamlParams unit.Params

func (p *yamlParams) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}
	var out unit.Params
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: param %q must be a scalar", v.Line, k.Value)
		}
		if out.Has(k.Value) {
			return fmt.Errorf("line %d: duplicate param %q", k.Line, k.Value)
		}
		out = out.Set(k.Value, v.Value)
	}
	*p = yamlParams(out)
	return nil
}

func (p yamlParams) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: kv.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: kv.Value, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// YAMLCodec reads and writes the YAML form of unit.Config.
type YAMLCodec struct{}

// Extension returns "yaml".
func (YAMLCodec) Extension() string { return "yaml" }

// Decode parses a YAML document.
func (YAMLCodec) Decode(data []byte) (*unit.Config, error) {
	var doc yamlUnit
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, parseError(err, "YAMLCodec", "parse document")
	}
	return doc.config(), nil
}

// Encode renders cfg as YAML.
func (YAMLCodec) Encode(cfg *unit.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(cfg)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (y *yamlUnit) config() *unit.Config {
	if y == nil {
		return &unit.Config{}
	}
	cfg := &unit.Config{
		Name:    y.Name,
		Parent:  y.Parent,
		Kind:    y.Kind,
		Handler: y.Handler,
		Params:  unit.Params(y.Params),
	}
	if y.Source != nil {
		src := *y.Source
		cfg.Source = &src
	}
	if len(y.Children) > 0 {
		cfg.Children = make(map[string]*unit.Config, len(y.Children))
		for name, child := range y.Children {
			cfg.Children[name] = child.config()
		}
	}
	return cfg
}

func toYAML(cfg *unit.Config) *yamlUnit {
	if cfg == nil {
		return &yamlUnit{}
	}
	y := &yamlUnit{
		Name:    cfg.Name,
		Parent:  cfg.Parent,
		Kind:    cfg.Kind,
		Handler: cfg.Handler,
		Params:  yamlParams(cfg.Params),
		Source:  cfg.Source,
	}
	if len(cfg.Children) > 0 {
		y.Children = make(map[string]*yamlUnit, len(cfg.Children))
		for name, child := range cfg.Children {
			y.Children[name] = toYAML(child)
		}
	}
	return y
}
