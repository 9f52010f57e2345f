package loader

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/unit"
)

func sampleConfig() *unit.Config {
	return &unit.Config{
		Name:    "app",
		Parent:  "bus",
		Kind:    "service",
		Handler: "defaults",
		Params: unit.Params{
			{Key: "port", Value: "8080"},
			{Key: unit.ContextLoaderParam, Value: "tenant-a"},
			{Key: "address", Value: "0.0.0.0"},
		},
		Source: &unit.Source{Loader: "json", Target: "base/app"},
		Children: map[string]*unit.Config{
			"db":    {Kind: "store", Params: unit.Params{{Key: "dsn", Value: "mem://"}}},
			"cache": {Name: "cache-main"},
		},
	}
}

func TestCodecs_Order(t *testing.T) {
	var exts []string
	for _, c := range Codecs() {
		exts = append(exts, c.Extension())
	}
	assert.Equal(t, []string{"ser", "xml", "json", "yaml"}, exts)

	c, ok := CodecFor("yaml")
	require.True(t, ok)
	assert.IsType(t, YAMLCodec{}, c)
	_, ok = CodecFor("toml")
	assert.False(t, ok)
}

func TestJSONCodec_Decode(t *testing.T) {
	doc := `{
		"name": "app",
		"kind": "service",
		"params": {"port": "8080", "retries": 3, "debug": true},
		"source": {"loader": "yaml", "target": "base"},
		"children": {"db": {"kind": "store"}}
	}`

	cfg, err := JSONCodec{}.Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, []string{"port", "retries", "debug"}, cfg.Params.Keys())
	retries, _ := cfg.Param("retries")
	assert.Equal(t, "3", retries)
	assert.Equal(t, &unit.Source{Loader: "yaml", Target: "base"}, cfg.Source)
	assert.Equal(t, "store", cfg.Children["db"].Kind)
}

func TestXMLCodec_Decode(t *testing.T) {
	doc := `<?xml version="1.0"?>
<unit name="app" kind="service" parent="bus">
  <source loader="json" target="base"/>
  <param key="port">8080</param>
  <param key="mode">fast</param>
  <unit key="db" kind="store">
    <param key="dsn">mem://</param>
  </unit>
  <unit name="cache-main"/>
</unit>`

	cfg, err := XMLCodec{}.Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, "bus", cfg.Parent)
	assert.Equal(t, unit.Params{{Key: "port", Value: "8080"}, {Key: "mode", Value: "fast"}}, cfg.Params)
	assert.Equal(t, []string{"cache-main", "db"}, cfg.ChildNames())
	assert.Equal(t, "", cfg.Children["db"].Name)
	dsn, _ := cfg.Children["db"].Param("dsn")
	assert.Equal(t, "mem://", dsn)
}

func TestYAMLCodec_Decode(t *testing.T) {
	doc := `
name: app
kind: service
params:
  zeta: "1"
  alpha: 2
source:
  loader: json
  target: base
children:
  db:
    kind: store
`
	cfg, err := YAMLCodec{}.Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, cfg.Params.Keys())
	alpha, _ := cfg.Param("alpha")
	assert.Equal(t, "2", alpha)
	assert.Equal(t, "json", cfg.Source.Loader)
	assert.Equal(t, "store", cfg.Children["db"].Kind)
}

func TestCodecs_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
		doc   string
	}{
		{"json syntax", JSONCodec{}, `{"name":`},
		{"json unknown field", JSONCodec{}, `{"nmae":"typo"}`},
		{"json params not object", JSONCodec{}, `{"params":["a"]}`},
		{"xml wrong root", XMLCodec{}, `<component name="x"/>`},
		{"xml param without key", XMLCodec{}, `<unit><param>v</param></unit>`},
		{"xml duplicate param", XMLCodec{}, `<unit><param key="a">1</param><param key="a">2</param></unit>`},
		{"xml anonymous child", XMLCodec{}, `<unit name="a"><unit kind="x"/></unit>`},
		{"yaml unknown field", YAMLCodec{}, "nmae: typo\n"},
		{"yaml nested param", YAMLCodec{}, "params:\n  a:\n    b: c\n"},
		{"yaml duplicate param", YAMLCodec{}, "params:\n  a: 1\n  a: 2\n"},
		{"gob garbage", GobCodec{}, "not gob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.codec.Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrParsingFailed)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestCodecs_EncodeDecode(t *testing.T) {
	for _, codec := range Codecs() {
		t.Run(codec.Extension(), func(t *testing.T) {
			want := sampleConfig()

			data, err := codec.Encode(want)
			require.NoError(t, err)
			got, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestGobCodec_NilChild(t *testing.T) {
	cfg := &unit.Config{Name: "a", Children: map[string]*unit.Config{"b": nil}}

	data, err := GobCodec{}.Encode(cfg)
	require.NoError(t, err)
	assert.Nil(t, cfg.Children["b"], "Encode must not modify its input")

	got, err := GobCodec{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, &unit.Config{}, got.Children["b"])
}

func TestCodecs_ParamOrderPreserved(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z][a-z0-9_-]{0,8}`), 1, 8, rapid.ID[string]).Draw(t, "keys")
		var params unit.Params
		for i, k := range keys {
			params = params.Set(k, rapid.StringMatching(`[ -~]{0,12}`).Draw(t, fmt.Sprintf("value-%d", i)))
		}
		cfg := &unit.Config{Name: "n", Params: params}

		for _, codec := range Codecs() {
			data, err := codec.Encode(cfg)
			if err != nil {
				t.Fatalf("%s encode: %v", codec.Extension(), err)
			}
			got, err := codec.Decode(data)
			if err != nil {
				t.Fatalf("%s decode: %v\n%s", codec.Extension(), err, data)
			}
			if fmt.Sprint(got.Params) != fmt.Sprint(params) {
				t.Fatalf("%s: params %v, want %v", codec.Extension(), got.Params, params)
			}
		}
	})
}
