package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/natsclient"
	"github.com/c360/semunits/unit"
)

// KeyValueGetter reads one entry from a key-value bucket.
type KeyValueGetter interface {
	Get(ctx context.Context, key string) (*natsclient.KVEntry, error)
}

// KVLoader reads configuration documents from a NATS key-value bucket.
// The key is the target, prefixed with "<context-loader>." when that
// parameter is set.
type KVLoader struct {
	store KeyValueGetter
	codec Codec
}

// NewKVLoader creates a loader over store decoding values with codec.
func NewKVLoader(store KeyValueGetter, codec Codec) *KVLoader {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &KVLoader{store: store, codec: codec}
}

// Key returns the bucket key for target under params.
func Key(target string, params unit.Params) string {
	if root, ok := params.Get(unit.ContextLoaderParam); ok && root != "" {
		return root + "." + target
	}
	return target
}

// Load fetches and decodes the entry for target.
func (l *KVLoader) Load(ctx context.Context, target string, params unit.Params) (*unit.Config, error) {
	key := Key(target, params)
	if !validKey(key) {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: invalid key %q", errors.ErrInvalidConfig, key),
			"KVLoader", "Load", "validate key")
	}

	entry, err := l.store.Get(ctx, key)
	if err != nil {
		if natsclient.IsKVNotFoundError(err) {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrKeyNotFound, key),
				"KVLoader", "Load", "get "+key)
		}
		return nil, errors.WrapTransient(err, "KVLoader", "Load", "get "+key)
	}
	return l.codec.Decode(entry.Value)
}

// Decode decodes a value read outside the loader.
func (l *KVLoader) Decode(data []byte) (*unit.Config, error) {
	return l.codec.Decode(data)
}

// validKey accepts the characters NATS allows in key-value keys.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '/', r == '=', r == '.':
		default:
			return false
		}
	}
	return true
}
