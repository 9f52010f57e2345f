package loader

import (
	"encoding/xml"
	"fmt"

	"github.com/c360/semunits/unit"
)

// xmlUnit is the XML document form:
//
//	<unit name="app" kind="service" parent="bus" handler="defaults">
//	  <source loader="json" target="base"/>
//	  <param key="port">8080</param>
//	  <unit key="db" kind="store"/>
//	</unit>
//
// Nested units are keyed by their key attribute, or by name when key is absent.
type xmlUnit struct {
	XMLName  xml.Name   `xml:"unit"`
	Key      string     `xml:"key,attr,omitempty"`
	Name     string     `xml:"name,attr,omitempty"`
	Parent   string     `xml:"parent,attr,omitempty"`
	Kind     string     `xml:"kind,attr,omitempty"`
	Handler  string     `xml:"handler,attr,omitempty"`
	Source   *xmlSource `xml:"source,omitempty"`
	Params   []xmlParam `xml:"param"`
	Children []*xmlUnit `xml:"unit"`
}

type xmlSource struct {
	Loader string `xml:"loader,attr"`
	Target string `xml:"target,attr"`
}

type xmlParam struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// XMLCodec reads and writes the XML form of unit.Config.
type XMLCodec struct{}

// Extension returns "xml".
func (XMLCodec) Extension() string { return "xml" }

// Decode parses an XML document.
func (XMLCodec) Decode(data []byte) (*unit.Config, error) {
	var doc xmlUnit
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, parseError(err, "XMLCodec", "parse document")
	}
	cfg, err := doc.config()
	if err != nil {
		return nil, parseError(err, "XMLCodec", "convert document")
	}
	return cfg, nil
}

// Encode renders cfg as indented XML.
func (XMLCodec) Encode(cfg *unit.Config) ([]byte, error) {
	out, err := xml.MarshalIndent(fromConfig(cfg, ""), "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func (x *xmlUnit) config() (*unit.Config, error) {
	cfg := &unit.Config{
		Name:    x.Name,
		Parent:  x.Parent,
		Kind:    x.Kind,
		Handler: x.Handler,
	}
	if x.Source != nil {
		cfg.Source = &unit.Source{Loader: x.Source.Loader, Target: x.Source.Target}
	}
	for _, p := range x.Params {
		if p.Key == "" {
			return nil, fmt.Errorf("param without key in unit %q", x.Name)
		}
		if cfg.Params.Has(p.Key) {
			return nil, fmt.Errorf("duplicate param %q in unit %q", p.Key, x.Name)
		}
		cfg.Params = cfg.Params.Set(p.Key, p.Value)
	}
	for _, child := range x.Children {
		key := child.Key
		if key == "" {
			key = child.Name
		}
		if key == "" {
			return nil, fmt.Errorf("nested unit of %q has neither key nor name", x.Name)
		}
		if _, exists := cfg.Children[key]; exists {
			return nil, fmt.Errorf("duplicate nested unit %q in unit %q", key, x.Name)
		}
		childCfg, err := child.config()
		if err != nil {
			return nil, err
		}
		if cfg.Children == nil {
			cfg.Children = make(map[string]*unit.Config)
		}
		cfg.Children[key] = childCfg
	}
	return cfg, nil
}

func fromConfig(cfg *unit.Config, key string) *xmlUnit {
	if cfg == nil {
		cfg = &unit.Config{}
	}
	x := &xmlUnit{
		Name:    cfg.Name,
		Parent:  cfg.Parent,
		Kind:    cfg.Kind,
		Handler: cfg.Handler,
	}
	if key != cfg.Name {
		x.Key = key
	}
	if cfg.Source != nil {
		x.Source = &xmlSource{Loader: cfg.Source.Loader, Target: cfg.Source.Target}
	}
	for _, p := range cfg.Params {
		x.Params = append(x.Params, xmlParam{Key: p.Key, Value: p.Value})
	}
	for _, name := range cfg.ChildNames() {
		x.Children = append(x.Children, fromConfig(cfg.Children[name], name))
	}
	return x
}
