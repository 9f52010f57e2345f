package main

import (
	stderrors "errors"

	"github.com/spf13/cobra"
)

func newRunCmd(c *cli) *cobra.Command {
	var flags resourceFlags
	cmd := &cobra.Command{
		Use:   "run NAME...",
		Short: "Create units from resources, print the tree and shut down",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newApp(ctx, c)
			if err != nil {
				return err
			}

			createErr := flags.createAll(ctx, rt, args)
			printErr := printTree(c.out, rt.registry.Root())
			closeErr := rt.Close(ctx)
			return stderrors.Join(createErr, printErr, closeErr)
		},
	}
	flags.register(cmd)
	return cmd
}
