package main

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/spf13/cobra"
)

// resourceFlags select the resources CreateFromResource reads.
type resourceFlags struct {
	dir    string
	base   string
	parent string
}

func (f *resourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "dir", ".", "directory holding the resources")
	cmd.Flags().StringVar(&f.base, "base", ".", "base name of the resources inside --dir")
	cmd.Flags().StringVar(&f.parent, "parent", "", "parent unit name for every created unit")
}

// createAll creates one root unit per name and reports every failure.
func (f *resourceFlags) createAll(ctx context.Context, rt *app, names []string) error {
	fsys := os.DirFS(f.dir)
	var errs []error
	for _, name := range names {
		u, err := rt.registry.Root().CreateFromResource(ctx, fsys, f.base, name, f.parent)
		if err != nil {
			rt.logger.Error("Unit creation failed", "unit", name, "error", err)
			errs = append(errs, err)
			continue
		}
		rt.logger.Info("Unit created", "unit", u.Name(), "id", u.ID())
	}
	return stderrors.Join(errs...)
}
