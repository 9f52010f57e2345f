package main

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/loader"
	"github.com/c360/semunits/unit"
)

func newValidateCmd(c *cli) *cobra.Command {
	var flags resourceFlags
	cmd := &cobra.Command{
		Use:   "validate NAME...",
		Short: "Resolve unit resources and print the effective configuration",
		Long: `validate decodes each named resource, follows its loader chain and prints
the effective configuration as YAML without creating any unit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newApp(ctx, c)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(ctx) }()

			fsys := os.DirFS(flags.dir)
			var errs []error
			for _, name := range args {
				out, err := resolveResource(cmd, rt, fsys, flags.base, name)
				if err != nil {
					rt.logger.Error("Resource is invalid", "unit", name, "error", err)
					errs = append(errs, err)
					continue
				}
				if _, err := fmt.Fprintf(c.out, "# %s\n%s", name, out); err != nil {
					return err
				}
			}
			return stderrors.Join(errs...)
		},
	}
	flags.register(cmd)
	return cmd
}

func resolveResource(cmd *cobra.Command, rt *app, fsys fs.FS, base, name string) ([]byte, error) {
	p, ext, err := unit.FindResource(fsys, base, name)
	if err != nil {
		return nil, err
	}
	codec, ok := loader.CodecFor(ext)
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrConfiguration, "validate", "resolveResource", "no codec for "+ext)
	}
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, errors.WrapTransient(err, "validate", "resolveResource", "read "+p)
	}
	cfg, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	cfg.Name = name

	resolved, err := rt.registry.Resolver().Resolve(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return loader.YAMLCodec{}.Encode(resolved)
}
