package loader

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/unit"
)

// Codec converts between a document format and unit.Config.
type Codec interface {
	// Extension is the file extension and loader tag of the format.
	Extension() string
	Decode(data []byte) (*unit.Config, error)
	Encode(cfg *unit.Config) ([]byte, error)
}

// Codecs returns every built-in codec in resource priority order.
func Codecs() []Codec {
	return []Codec{GobCodec{}, XMLCodec{}, JSONCodec{}, YAMLCodec{}}
}

// CodecFor returns the built-in codec for ext.
func CodecFor(ext string) (Codec, bool) {
	i := slices.IndexFunc(Codecs(), func(c Codec) bool { return c.Extension() == ext })
	if i < 0 {
		return nil, false
	}
	return Codecs()[i], true
}

func parseError(err error, codec, action string) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), codec, "Decode", action)
}

// JSONCodec reads and writes the JSON form of unit.Config.
type JSONCodec struct{}

// Extension returns "json".
func (JSONCodec) Extension() string { return "json" }

// Decode parses a JSON document.
func (JSONCodec) Decode(data []byte) (*unit.Config, error) {
	var cfg unit.Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, parseError(err, "JSONCodec", "parse document")
	}
	return &cfg, nil
}

// Encode renders cfg as indented JSON.
func (JSONCodec) Encode(cfg *unit.Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// gobVersion is bumped whenever the serialized layout changes.
const gobVersion = 1

type gobEnvelope struct {
	Version int
	Config  *unit.Config
}

// GobCodec reads and writes the serialized ("ser") form of unit.Config.
type GobCodec struct{}

// Extension returns "ser".
func (GobCodec) Extension() string { return "ser" }

// Decode parses a serialized document.
func (GobCodec) Decode(data []byte) (*unit.Config, error) {
	var env gobEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, parseError(err, "GobCodec", "parse document")
	}
	if env.Version != gobVersion {
		return nil, parseError(fmt.Errorf("unsupported version %d", env.Version), "GobCodec", "version check")
	}
	if env.Config == nil {
		return &unit.Config{}, nil
	}
	return env.Config, nil
}

// Encode serializes cfg.
func (GobCodec) Encode(cfg *unit.Config) ([]byte, error) {
	var buf bytes.Buffer
	env := gobEnvelope{Version: gobVersion, Config: fillChildren(cfg.Clone())}
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, errors.WrapInvalid(err, "GobCodec", "Encode", "serialize config")
	}
	return buf.Bytes(), nil
}

// fillChildren replaces nil nested configs, which gob cannot encode.
func fillChildren(cfg *unit.Config) *unit.Config {
	if cfg == nil {
		return nil
	}
	for name, child := range cfg.Children {
		if child == nil {
			cfg.Children[name] = &unit.Config{}
			continue
		}
		fillChildren(child)
	}
	return cfg
}
