package unit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ContextLoaderParam names the well-known parameter that selects the
// resource root loaders read from. It is copied from a referencing config
// down to the configs it loads and to nested unit configs, never
// overwriting a value that is already present.
const ContextLoaderParam = "context-loader"

// Param is a single initialization parameter.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Params is an ordered set of initialization parameters. Keys are unique;
// Set replaces in place so the original position is kept.
type Params []Param

// Get returns the value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set assigns value to key and returns the updated set.
func (p Params) Set(key, value string) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Param{Key: key, Value: value})
}

// Keys returns the parameter keys in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// MarshalJSON encodes the params as a JSON object keeping their order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping document order. Non-string
// values are stored in their JSON text form.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("params: expected object, got %v", tok)
	}

	var out Params
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("params: expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("params: value for %q: %w", key, err)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = string(raw)
		}
		out = out.Set(key, s)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// Source references an external configuration the Loader registered under
// the Loader tag can produce from Target.
type Source struct {
	Loader string `json:"loader"`
	Target string `json:"target"`
}

// Config describes one unit. Name is optional until resolution and
// mandatory afterwards. Nested configs without a name take their key in
// Children.
type Config struct {
	Name     string             `json:"name,omitempty"`
	Parent   string             `json:"parent,omitempty"`
	Kind     string             `json:"kind,omitempty"`
	Handler  string             `json:"handler,omitempty"`
	Params   Params             `json:"params,omitempty"`
	Source   *Source            `json:"source,omitempty"`
	Children map[string]*Config `json:"children,omitempty"`
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := &Config{
		Name:    c.Name,
		Parent:  c.Parent,
		Kind:    c.Kind,
		Handler: c.Handler,
		Params:  c.Params.Clone(),
	}
	if c.Source != nil {
		src := *c.Source
		clone.Source = &src
	}
	if c.Children != nil {
		clone.Children = make(map[string]*Config, len(c.Children))
		for name, child := range c.Children {
			clone.Children[name] = child.Clone()
		}
	}
	return clone
}

// Param returns the value of an initialization parameter.
func (c *Config) Param(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.Params.Get(key)
}

// ChildNames returns the nested unit names in sorted order.
func (c *Config) ChildNames() []string {
	if c == nil || len(c.Children) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Children))
}

// propagateContextLoader copies the context-loader parameter from src onto
// dst unless dst already defines one.
func propagateContextLoader(src, dst *Config) {
	if dst == nil {
		return
	}
	v, ok := src.Param(ContextLoaderParam)
	if !ok || dst.Params.Has(ContextLoaderParam) {
		return
	}
	dst.Params = dst.Params.Set(ContextLoaderParam, v)
}

// overlay returns a copy of base with every explicitly set field of over
// applied on top. over wins on conflicts; params and children merge by key.
// The result carries no Source since it is already resolved.
func overlay(base, over *Config) *Config {
	out := base.Clone()
	if out == nil {
		out = &Config{}
	}
	out.Source = nil
	if over == nil {
		return out
	}

	if over.Name != "" {
		out.Name = over.Name
	}
	if over.Parent != "" {
		out.Parent = over.Parent
	}
	if over.Kind != "" {
		out.Kind = over.Kind
	}
	if over.Handler != "" {
		out.Handler = over.Handler
	}
	for _, kv := range over.Params {
		out.Params = out.Params.Set(kv.Key, kv.Value)
	}
	if len(over.Children) > 0 {
		if out.Children == nil {
			out.Children = make(map[string]*Config, len(over.Children))
		}
		for name, child := range over.Children {
			out.Children[name] = child.Clone()
		}
	}
	return out
}
