package loader

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/unit"
)

// FileLoader reads configuration documents of one format from the root the
// context-loader parameter selects. A target without an extension gets the
// codec's extension appended.
type FileLoader struct {
	codec Codec
	roots *Roots
}

// NewFileLoader creates a file loader for codec reading from roots.
func NewFileLoader(codec Codec, roots *Roots) *FileLoader {
	return &FileLoader{codec: codec, roots: roots}
}

// Codec returns the document codec.
func (l *FileLoader) Codec() Codec { return l.codec }

// Load reads and decodes target.
func (l *FileLoader) Load(ctx context.Context, target string, params unit.Params) (*unit.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fsys, root, err := l.roots.Select(params)
	if err != nil {
		return nil, err
	}

	name := target
	if path.Ext(name) == "" {
		name += "." + l.codec.Extension()
	}
	if !fs.ValidPath(name) {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: invalid path %q", errors.ErrInvalidConfig, target),
			"FileLoader", "Load", "validate target")
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.WrapInvalid(err, "FileLoader", "Load", fmt.Sprintf("read %s from root %q", name, root))
		}
		return nil, errors.WrapTransient(err, "FileLoader", "Load", "read "+name)
	}
	return l.codec.Decode(data)
}

// Decode decodes an already opened document.
func (l *FileLoader) Decode(data []byte) (*unit.Config, error) {
	return l.codec.Decode(data)
}
