package unit

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/c360/semunits/errors"
)

// ResourceExtensions lists the resource forms CreateFromResource tries, in
// priority order. The first form present is used exclusively.
var ResourceExtensions = []string{"ser", "xml", "json"}

// ResourcePath returns the resource path for one form: <base>/<name>.<ext>.
func ResourcePath(base, name, ext string) string {
	return path.Join(base, name+"."+ext)
}

// FindResource returns the path and extension of the first resource form
// of base/name present in fsys.
func FindResource(fsys fs.FS, base, name string) (string, string, error) {
	for _, ext := range ResourceExtensions {
		p := ResourcePath(base, name, ext)
		_, err := fs.Stat(fsys, p)
		if err == nil {
			return p, ext, nil
		}
		if !stderrors.Is(err, fs.ErrNotExist) {
			return "", "", errors.WrapKind(errors.ErrLoaderFailure, err, "Context", "CreateFromResource", "stat "+p)
		}
	}
	return "", "", errors.WrapKind(errors.ErrConfiguration,
		fmt.Errorf("no resource %s/%s.{ser,xml,json}", base, name),
		"Context", "CreateFromResource", "resource lookup")
}

// CreateFromResource locates the configuration resource <baseName>/<unitName>
// in fsys, decodes it with the loader registered for its extension, names
// the unit unitName under parentName (when set) and creates it.
func (c *Context) CreateFromResource(ctx context.Context, fsys fs.FS, baseName, unitName, parentName string) (*Unit, error) {
	if unitName == "" {
		err := errors.WrapKind(errors.ErrConfiguration, stderrors.New("unit name is required"),
			"Context", "CreateFromResource", "name validation")
		c.recordFailure("create", err)
		return nil, err
	}

	p, ext, err := FindResource(fsys, baseName, unitName)
	if err != nil {
		c.recordFailure("create", err)
		return nil, err
	}

	cfg, err := c.decodeResource(fsys, p, ext)
	if err != nil {
		c.recordFailure("create", err)
		return nil, err
	}

	cfg.Name = unitName
	if parentName != "" {
		cfg.Parent = parentName
	}
	c.logger().Debug("Creating unit from resource", "unit", unitName, "resource", p)
	return c.Create(ctx, cfg)
}

func (c *Context) decodeResource(fsys fs.FS, p, ext string) (*Config, error) {
	loader, ok := c.registry.loaders.Lookup(ext)
	if !ok {
		return nil, errors.WrapKind(errors.ErrConfiguration,
			fmt.Errorf("no loader registered for resource form %q", ext),
			"Context", "CreateFromResource", "loader lookup")
	}
	decoder, ok := loader.(Decoder)
	if !ok {
		return nil, errors.WrapKind(errors.ErrConfiguration,
			fmt.Errorf("loader %q cannot decode resources", ext),
			"Context", "CreateFromResource", "loader lookup")
	}

	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, errors.WrapKind(errors.ErrLoaderFailure, err, "Context", "CreateFromResource", "read "+p)
	}
	cfg, err := decoder.Decode(data)
	if err != nil {
		return nil, errors.WrapKind(errors.ErrLoaderFailure, err, "Context", "CreateFromResource", "decode "+p)
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg, nil
}
