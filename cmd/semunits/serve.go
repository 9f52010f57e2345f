package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/c360/semunits/metric"
)

func newServeCmd(c *cli) *cobra.Command {
	var flags resourceFlags
	cmd := &cobra.Command{
		Use:   "serve NAME...",
		Short: "Create units from resources and keep them until interrupted",
		Long: `serve creates the named units and holds them until SIGINT or SIGTERM.
With metrics enabled it also serves /metrics, /health and /units.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c, &flags, args)
		},
	}
	flags.register(cmd)
	return cmd
}

func serve(ctx context.Context, c *cli, flags *resourceFlags, names []string) error {
	rt, err := newApp(ctx, c)
	if err != nil {
		return err
	}

	if err := flags.createAll(ctx, rt, names); err != nil {
		_ = rt.Close(context.Background())
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.cfg.Metrics.Enabled {
		srv := metric.NewServer(c.cfg.Metrics.Addr, c.cfg.Metrics.Path, rt.metrics)
		srv.Handle("/health", rt.monitor.Handler(appName))
		srv.Handle("/units", unitsHandler(rt.registry.Root()))
		rt.logger.Info("Serving metrics", "address", srv.Address())
		g.Go(func() error { return srv.Run(gctx) })
	}

	rt.logger.Info("Units ready", "count", rt.registry.Len())
	<-gctx.Done()
	rt.logger.Info("Shutting down", "units", rt.registry.Len())

	serveErr := g.Wait()
	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := rt.Close(closeCtx); err != nil {
		return err
	}
	return serveErr
}
