package loader

import (
	"time"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/unit"
)

// KVTag is the loader tag of the key-value loader.
const KVTag = "kv"

// Options selects what RegisterDefaults installs.
type Options struct {
	// Roots serves the file loaders; nil registers no file loaders.
	Roots *Roots
	// Store enables the key-value loader under KVTag.
	Store KeyValueGetter
	// KVCodec is the extension of the format stored in the bucket, json by default.
	KVCodec string
	// CacheTTL wraps every loader in a CachingLoader when positive.
	CacheTTL time.Duration
}

// RegisterDefaults registers a file loader for every built-in codec under
// its extension and, when a store is given, the key-value loader.
func RegisterDefaults(table *unit.Table[unit.Loader], opts Options) error {
	wrap := func(l unit.Loader) unit.Loader {
		if opts.CacheTTL > 0 {
			return NewCachingLoader(l, opts.CacheTTL)
		}
		return l
	}

	if opts.Roots != nil {
		for _, codec := range Codecs() {
			if err := table.Register(codec.Extension(), wrap(NewFileLoader(codec, opts.Roots))); err != nil {
				return errors.WrapInvalid(err, "loader", "RegisterDefaults", "register "+codec.Extension())
			}
		}
	}

	if opts.Store != nil {
		ext := opts.KVCodec
		if ext == "" {
			ext = "json"
		}
		codec, ok := CodecFor(ext)
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "loader", "RegisterDefaults", "unknown kv codec "+ext)
		}
		if err := table.Register(KVTag, wrap(NewKVLoader(opts.Store, codec))); err != nil {
			return errors.WrapInvalid(err, "loader", "RegisterDefaults", "register "+KVTag)
		}
	}
	return nil
}
